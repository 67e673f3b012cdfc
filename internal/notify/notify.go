// Package notify implements transient, auto-dismissing user notifications.
package notify

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"ClassroomBoard/internal/logger"
)

type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// DefaultDuration is how long a toast stays up unless dismissed.
const DefaultDuration = 3000 * time.Millisecond

// GenericFailure is shown when an event handler fails unexpectedly.
const GenericFailure = "An error occurred, please refresh and try again"

type Toast struct {
	ID       string
	Message  string
	Severity Severity
	Created  time.Time
}

// Sink displays toasts. Show and Remove may be called from any goroutine.
type Sink interface {
	Show(t Toast)
	Remove(id string)
}

type entry struct {
	toast Toast
	timer *time.Timer
}

type Service struct {
	sink     Sink
	log      logger.Logger
	duration time.Duration

	mu     sync.Mutex
	active map[string]*entry
	order  []string
	closed bool
}

// New creates a Service. sink may be nil, in which case toasts are only
// tracked and logged.
func New(sink Sink, duration time.Duration, log logger.Logger) *Service {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		sink:     sink,
		log:      log,
		duration: duration,
		active:   make(map[string]*entry),
	}
}

// Notify shows message with the given severity; an empty severity means Info.
func (s *Service) Notify(message string, severity Severity) {
	s.Push(message, severity)
}

// Push is Notify returning the created toast.
func (s *Service) Push(message string, severity Severity) Toast {
	if severity == "" {
		severity = Info
	}
	t := Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		Created:  time.Now(),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return t
	}
	e := &entry{toast: t}
	s.active[t.ID] = e
	s.order = append(s.order, t.ID)
	e.timer = time.AfterFunc(s.duration, func() { s.Dismiss(t.ID) })
	s.mu.Unlock()

	s.log.Debug(fmt.Sprintf("[NOTIFY] %s: %s", severity, message))
	if s.sink != nil {
		s.sink.Show(t)
	}
	return t
}

// Dismiss removes a toast early. Removing an already removed toast is a no-op;
// the return value reports whether anything was removed.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	e, ok := s.active[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.timer.Stop()
	delete(s.active, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Remove(id)
	}
	return true
}

// Active returns the live toasts, oldest first.
func (s *Service) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	toasts := make([]Toast, 0, len(s.order))
	for _, id := range s.order {
		toasts = append(toasts, s.active[id].toast)
	}
	return toasts
}

// Close stops pending expiries and ignores further notifications.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, e := range s.active {
		e.timer.Stop()
	}
	s.active = make(map[string]*entry)
	s.order = nil
}

// Guard runs fn and turns a panic into a logged error plus a generic danger
// toast, so a failing handler never takes the application down.
func (s *Service) Guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(fmt.Sprintf("[%s] recovered: %v", name, r), string(debug.Stack()))
			s.Notify(GenericFailure, Danger)
		}
	}()
	fn()
}
