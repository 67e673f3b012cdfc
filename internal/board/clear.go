package board

import (
	"github.com/pkg/errors"

	"ClassroomBoard/internal/notify"
)

var ErrNoConfirmer = errors.New("clear requires a confirmer")

// Clear asks for confirmation and, once confirmed, wipes the ink. A loaded
// slide is redrawn so only strokes disappear. Declining does nothing.
func (s *Surface) Clear() error {
	s.mu.Lock()
	c, prompt, done := s.confirmer, s.clearPrompt, s.clearedMessage
	s.mu.Unlock()
	if c == nil {
		return ErrNoConfirmer
	}

	c.Confirm(prompt, func(ok bool) {
		if !ok {
			return
		}
		s.ClearNow()
		s.notify(done, notify.Success)
	})
	return nil
}

// ClearNow clears the raster without asking and redraws the slide, if any.
func (s *Surface) ClearNow() {
	s.mu.Lock()
	clearRect(s.raster, s.raster.Bounds())
	s.drawSlide()
	s.mu.Unlock()

	if s.OnClear != nil {
		s.OnClear()
	}
	s.changed()
}
