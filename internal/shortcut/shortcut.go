// Package shortcut maps key presses to classroom actions.
package shortcut

import (
	"strings"
	"sync"
)

type Action int

const (
	None Action = iota
	Export
	Undo // reserved, nothing is bound to it
	Pen
	Eraser
	Clear
)

func (a Action) String() string {
	switch a {
	case Export:
		return "export"
	case Undo:
		return "undo"
	case Pen:
		return "pen"
	case Eraser:
		return "eraser"
	case Clear:
		return "clear"
	}
	return "none"
}

// Resolve maps a key to its action. modifier is true while Ctrl or Cmd is
// held; tool keys only apply without it.
func Resolve(key string, modifier bool) Action {
	if modifier {
		switch strings.ToLower(key) {
		case "s":
			return Export
		case "z":
			return Undo
		}
		return None
	}
	switch key {
	case "p":
		return Pen
	case "e":
		return Eraser
	case "c":
		return Clear
	}
	return None
}

// Dispatcher runs the handler bound to the action a key resolves to.
type Dispatcher struct {
	handlers map[Action]func()
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Action]func())}
}

func (d *Dispatcher) On(a Action, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[a] = fn
}

// Dispatch resolves the key and runs its handler, if any. It returns the
// resolved action even when nothing was bound to it.
func (d *Dispatcher) Dispatch(key string, modifier bool) Action {
	a := Resolve(key, modifier)
	if a == None {
		return a
	}
	d.mu.RLock()
	fn := d.handlers[a]
	d.mu.RUnlock()
	if fn != nil {
		fn()
	}
	return a
}
