package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/state"
)

// SurfaceWidget shows a board.Surface and feeds it mouse and touch input.
type SurfaceWidget struct {
	widget.BaseWidget
	surface  *board.Surface
	readOnly bool

	mu     sync.RWMutex
	cursor desktop.Cursor
	image  *canvas.Image
}

var _ fyne.Widget = (*SurfaceWidget)(nil)
var _ fyne.Draggable = (*SurfaceWidget)(nil)
var _ desktop.Mouseable = (*SurfaceWidget)(nil)
var _ desktop.Hoverable = (*SurfaceWidget)(nil)
var _ desktop.Cursorable = (*SurfaceWidget)(nil)
var _ mobile.Touchable = (*SurfaceWidget)(nil)
var _ board.CursorSetter = (*SurfaceWidget)(nil)

// NewSurfaceWidget wraps s. A read-only widget ignores input, which is how
// mirror viewers show the presenter's surfaces.
func NewSurfaceWidget(s *board.Surface, readOnly bool) *SurfaceWidget {
	w := &SurfaceWidget{
		surface:  s,
		readOnly: readOnly,
		cursor:   desktop.CrosshairCursor,
	}
	w.image = canvas.NewImageFromImage(s.Snapshot())
	w.image.FillMode = canvas.ImageFillStretch
	w.image.ScaleMode = canvas.ImageScaleFastest

	prev := s.OnChange
	s.OnChange = func() {
		if prev != nil {
			prev()
		}
		w.redraw()
	}
	w.ExtendBaseWidget(w)
	return w
}

func (w *SurfaceWidget) Surface() *board.Surface { return w.surface }

// redraw may be called from any goroutine.
func (w *SurfaceWidget) redraw() {
	img := w.surface.Snapshot()
	fyne.Do(func() {
		w.image.Image = img
		w.image.Refresh()
	})
}

func (w *SurfaceWidget) SetCursor(c board.Cursor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c == board.CursorGrab {
		// No grab cursor on desktop drivers.
		w.cursor = desktop.PointerCursor
		return
	}
	w.cursor = desktop.CrosshairCursor
}

func (w *SurfaceWidget) Cursor() desktop.Cursor {
	if w.readOnly {
		return desktop.DefaultCursor
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cursor
}

// local converts an absolute event position to surface coordinates.
func (w *SurfaceWidget) local(abs fyne.Position) (float64, float64) {
	origin := fyne.NewPos(0, 0)
	if app := fyne.CurrentApp(); app != nil {
		origin = app.Driver().AbsolutePositionForObject(w)
	}
	return board.ClientToLocal(float64(abs.X), float64(abs.Y),
		board.Rect{Left: float64(origin.X), Top: float64(origin.Y)})
}

func (w *SurfaceWidget) input(abs fyne.Position, phase board.Phase) {
	if w.readOnly {
		return
	}
	x, y := w.local(abs)
	w.surface.Handle(board.Input{X: x, Y: y, Phase: phase})
}

func (w *SurfaceWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.input(e.AbsolutePosition, board.PhaseDown)
	}
}

func (w *SurfaceWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.input(e.AbsolutePosition, board.PhaseUp)
	}
}

func (w *SurfaceWidget) MouseIn(*desktop.MouseEvent) {}

func (w *SurfaceWidget) MouseMoved(e *desktop.MouseEvent) {
	w.input(e.AbsolutePosition, board.PhaseMove)
}

func (w *SurfaceWidget) MouseOut() {
	if !w.readOnly {
		w.surface.Handle(board.Input{Phase: board.PhaseOut})
	}
}

func (w *SurfaceWidget) Dragged(e *fyne.DragEvent) {
	w.input(e.AbsolutePosition, board.PhaseMove)
}

func (w *SurfaceWidget) DragEnd() {
	if !w.readOnly {
		w.surface.Handle(board.Input{Phase: board.PhaseUp})
	}
}

func (w *SurfaceWidget) TouchDown(e *mobile.TouchEvent) {
	if w.readOnly {
		return
	}
	x, y := w.local(e.AbsolutePosition)
	w.surface.HandleTouch(board.PhaseDown, []state.Point{{X: x, Y: y}})
}

func (w *SurfaceWidget) TouchUp(*mobile.TouchEvent) {
	if !w.readOnly {
		w.surface.HandleTouch(board.PhaseUp, nil)
	}
}

func (w *SurfaceWidget) TouchCancel(*mobile.TouchEvent) {
	if !w.readOnly {
		w.surface.HandleTouch(board.PhaseOut, nil)
	}
}

func (w *SurfaceWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &surfaceRenderer{widget: w}
	r.background = canvas.NewRectangle(color.White)
	return r
}

type surfaceRenderer struct {
	widget     *SurfaceWidget
	background *canvas.Rectangle
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.widget.image}
}

// Layout pins the raster at the top-left at its pixel size so that widget
// coordinates and surface coordinates match one to one.
func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	b := r.widget.surface.Bounds()
	r.widget.image.Move(fyne.NewPos(0, 0))
	r.widget.image.Resize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	b := r.widget.surface.Bounds()
	return fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
}

func (r *surfaceRenderer) Refresh() {
	r.widget.image.Refresh()
	canvas.Refresh(r.widget)
}

func (r *surfaceRenderer) Destroy() {}
