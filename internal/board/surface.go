// Package board implements the freehand drawing surfaces: a raster, the
// pointer and touch input adapter, tool state, slide background and clear.
package board

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"

	"github.com/pkg/errors"

	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
)

// Phase is the stage of a normalized pointer input.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseOut
)

// Input is a pointer or touch event in canvas-local coordinates.
type Input struct {
	X, Y  float64
	Phase Phase
}

// Rect is the surface's bounding rectangle in client coordinates.
type Rect struct {
	Left, Top float64
}

// ClientToLocal translates client coordinates into canvas-local ones using the
// bounding rectangle offset. There is no scroll or zoom compensation.
func ClientToLocal(clientX, clientY float64, r Rect) (float64, float64) {
	return clientX - r.Left, clientY - r.Top
}

type Notifier interface {
	Notify(message string, severity notify.Severity)
}

// Confirmer asks the user to confirm a destructive action and reports the
// answer through onResult, possibly later.
type Confirmer interface {
	Confirm(message string, onResult func(ok bool))
}

type Options struct {
	Name        string
	Width       int
	Height      int
	LineWidth   float64
	StrokeColor string

	ClearPrompt    string
	ClearedMessage string

	Notifier  Notifier
	Confirmer Confirmer
}

const (
	DefaultLineWidth   = 3
	DefaultStrokeColor = "#000000"
	DefaultWidth       = 960
	DefaultHeight      = 540
)

type Surface struct {
	name   string
	raster *image.RGBA
	mask   *image.Alpha // eraser coverage scratch buffer
	pen    *brush
	eraser *brush
	st     state.SurfaceState
	ink    color.NRGBA
	last   state.Point
	slide  image.Image
	mu     sync.Mutex

	notifier       Notifier
	confirmer      Confirmer
	clearPrompt    string
	clearedMessage string

	// Callbacks run after the raster changed, outside the surface lock.
	OnSegment func(seg state.Segment)
	OnClear   func()
	OnSlide   func(img image.Image)
	OnChange  func()
}

func New(opts Options) *Surface {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = DefaultLineWidth
	}
	ink, err := ParseColor(opts.StrokeColor)
	if err != nil {
		opts.StrokeColor = DefaultStrokeColor
		ink, _ = ParseColor(DefaultStrokeColor)
	}
	if opts.ClearPrompt == "" {
		opts.ClearPrompt = "Clear all drawings?"
	}
	if opts.ClearedMessage == "" {
		opts.ClearedMessage = "Canvas cleared"
	}
	r := image.Rect(0, 0, opts.Width, opts.Height)
	raster, mask := image.NewRGBA(r), image.NewAlpha(r)
	return &Surface{
		name:   opts.Name,
		raster: raster,
		mask:   mask,
		pen:    newBrush(raster),
		eraser: newBrush(mask),
		st: state.SurfaceState{
			Tool:        state.ToolPen,
			StrokeColor: opts.StrokeColor,
			LineWidth:   opts.LineWidth,
		},
		ink:            ink,
		notifier:       opts.Notifier,
		confirmer:      opts.Confirmer,
		clearPrompt:    opts.ClearPrompt,
		clearedMessage: opts.ClearedMessage,
	}
}

func (s *Surface) Name() string { return s.name }

func (s *Surface) Bounds() image.Rectangle { return s.raster.Bounds() }

func (s *Surface) State() state.SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *Surface) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Drawing
}

// SetConfirmer replaces the confirmation provider used by Clear.
func (s *Surface) SetConfirmer(c Confirmer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmer = c
}

func (s *Surface) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// SetTool changes the tool mode. Use a ToolController to also update the
// cursor and tool buttons.
func (s *Surface) SetTool(t state.Tool) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownTool, "%q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Tool = t
	return nil
}

func (s *Surface) SetStrokeColor(c string) error {
	ink, err := ParseColor(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ink = ink
	s.st.StrokeColor = c
	return nil
}

func (s *Surface) SetLineWidth(w float64) {
	if w <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.LineWidth = w
}

// Handle is the shared entry point for mouse and touch input.
func (s *Surface) Handle(in Input) {
	switch in.Phase {
	case PhaseDown:
		s.PointerDown(in.X, in.Y)
	case PhaseMove:
		s.PointerMove(in.X, in.Y)
	case PhaseUp:
		s.PointerUp()
	case PhaseOut:
		s.PointerOut()
	}
}

// HandleTouch adapts a touch event to the pointer contract using the first
// active touch point.
func (s *Surface) HandleTouch(phase Phase, touches []state.Point) {
	if len(touches) == 0 {
		if phase == PhaseUp || phase == PhaseOut {
			s.Handle(Input{Phase: phase})
		}
		return
	}
	t := touches[0]
	s.Handle(Input{X: t.X, Y: t.Y, Phase: phase})
}

// PointerDown opens a new stroke at (x, y) and paints its starting dot.
func (s *Surface) PointerDown(x, y float64) {
	p := state.Point{X: x, Y: y}
	s.mu.Lock()
	s.st.Drawing = true
	s.last = p
	seg := s.segment(p, p)
	seg.Dot = true
	s.paint(seg)
	s.mu.Unlock()

	s.emit(seg)
}

// PointerMove commits the segment from the previous point to (x, y) and
// starts a new sub-path there. It is a no-op while not drawing.
func (s *Surface) PointerMove(x, y float64) {
	p := state.Point{X: x, Y: y}
	s.mu.Lock()
	if !s.st.Drawing || p == s.last {
		s.mu.Unlock()
		return
	}
	seg := s.segment(s.last, p)
	s.paint(seg)
	s.last = p
	s.mu.Unlock()

	s.emit(seg)
}

// PointerUp ends the open stroke, if any.
func (s *Surface) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Drawing = false
}

// PointerOut ends the open stroke when the pointer leaves the surface.
func (s *Surface) PointerOut() {
	s.PointerUp()
}

// ApplySegment paints a segment produced elsewhere (a mirrored presenter)
// without touching the local stroke state.
func (s *Surface) ApplySegment(seg state.Segment) {
	s.mu.Lock()
	s.paint(seg)
	s.mu.Unlock()
	s.changed()
}

func (s *Surface) segment(from, to state.Point) state.Segment {
	return state.Segment{
		Surface: s.name,
		From:    from,
		To:      to,
		Tool:    s.st.Tool,
		Color:   s.st.StrokeColor,
		Width:   s.st.LineWidth,
	}
}

// paint must be called with s.mu held.
func (s *Surface) paint(seg state.Segment) {
	ink := s.ink
	if seg.Color != "" && seg.Color != s.st.StrokeColor {
		if c, err := ParseColor(seg.Color); err == nil {
			ink = c
		} else {
			log.Printf("[BOARD] %s: ignoring colour %q: %v", s.name, seg.Color, err)
		}
	}

	if seg.Tool != state.ToolEraser {
		s.pen.segment(seg, ink)
		return
	}

	r := inkBounds(seg.From, seg.To, seg.Width)
	s.eraser.segment(seg, color.Opaque)
	destinationOut(s.raster, s.mask, r)
	clearRect(s.mask, r)
}

func (s *Surface) emit(seg state.Segment) {
	if s.OnSegment != nil {
		s.OnSegment(seg)
	}
	s.changed()
}

func (s *Surface) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Surface) notify(message string, severity notify.Severity) {
	s.mu.Lock()
	n := s.notifier
	s.mu.Unlock()
	if n != nil {
		n.Notify(message, severity)
	}
}

// Snapshot returns a copy of the raster.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := image.NewRGBA(s.raster.Bounds())
	copy(img.Pix, s.raster.Pix)
	return img
}

// Restore replaces the raster with img, drawn at the origin.
func (s *Surface) Restore(img image.Image) {
	s.mu.Lock()
	clearRect(s.raster, s.raster.Bounds())
	draw.Draw(s.raster, s.raster.Bounds(), img, img.Bounds().Min, draw.Src)
	s.mu.Unlock()
	s.changed()
}
