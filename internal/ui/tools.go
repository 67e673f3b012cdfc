package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
)

const msgInvalidColor = "Invalid colour"

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// toolButton is a tool button that shows itself as active by importance.
type toolButton struct {
	*widget.Button
}

var _ board.Indicator = toolButton{}

func (b toolButton) SetActive(active bool) {
	if active {
		b.Importance = widget.HighImportance
	} else {
		b.Importance = widget.MediumImportance
	}
	b.Refresh()
}

// Toolbar drives the tool controller of whichever surface is active.
type Toolbar struct {
	active   func() *board.ToolController
	notifier *notify.Service

	pen, eraser toolButton
	colorPicker *widget.Entry // nil when hidden
	width       *widget.Slider
	object      fyne.CanvasObject
}

func NewToolbar(active func() *board.ToolController, n *notify.Service, withColorPicker bool, lineWidth float64) *Toolbar {
	t := &Toolbar{active: active, notifier: n}

	t.pen = toolButton{widget.NewButtonWithIcon("Pen", theme.DocumentCreateIcon(), func() {
		t.setTool(state.ToolPen)
	})}
	t.eraser = toolButton{widget.NewButtonWithIcon("Eraser", theme.ContentClearIcon(), func() {
		t.setTool(state.ToolEraser)
	})}

	// --- Color Palette ---
	onColorTapped := func(c color.Color) {
		t.SetColor(board.FormatColor(c))
	}
	colorBox := container.NewHBox(
		newColorSwatch(color.Black, onColorTapped),
		newColorSwatch(color.NRGBA{R: 255, A: 255}, onColorTapped),         // Red
		newColorSwatch(color.NRGBA{G: 255, A: 255}, onColorTapped),         // Green
		newColorSwatch(color.NRGBA{B: 255, A: 255}, onColorTapped),         // Blue
		newColorSwatch(color.NRGBA{R: 255, G: 255, A: 255}, onColorTapped), // Yellow
	)
	objects := []fyne.CanvasObject{
		widget.NewLabel("Tool:"), t.pen, t.eraser,
		widget.NewSeparator(),
		widget.NewLabel("Color:"), colorBox,
	}

	if withColorPicker {
		t.colorPicker = widget.NewEntry()
		t.colorPicker.SetPlaceHolder(board.DefaultStrokeColor)
		t.colorPicker.OnSubmitted = func(s string) { t.SetColor(s) }
		objects = append(objects,
			container.New(layout.NewGridWrapLayout(fyne.NewSize(100, 35)), t.colorPicker))
	}

	// --- Stroke Width Slider ---
	t.width = widget.NewSlider(1.0, 50.0)
	t.width.SetValue(lineWidth)
	t.width.OnChanged = func(val float64) {
		if c := t.active(); c != nil {
			c.SetLineWidth(val)
		}
	}
	objects = append(objects,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.width),
		layout.NewSpacer(),
	)
	t.object = container.NewHBox(objects...)
	return t
}

func (t *Toolbar) Object() fyne.CanvasObject { return t.object }

// Bind registers the tool buttons with c.
func (t *Toolbar) Bind(c *board.ToolController) {
	c.Bind(state.ToolPen, t.pen)
	c.Bind(state.ToolEraser, t.eraser)
}

func (t *Toolbar) setTool(tool state.Tool) {
	c := t.active()
	if c == nil {
		return
	}
	if err := c.SetTool(tool); err != nil {
		t.notifier.Notify(err.Error(), notify.Warning)
	}
}

// SetColor applies a colour to the active surface and mirrors it in the
// colour picker. Invalid colours are reported and leave the stroke unchanged.
func (t *Toolbar) SetColor(s string) {
	c := t.active()
	if c == nil {
		return
	}
	if err := c.SetColor(s); err != nil {
		t.notifier.Notify(msgInvalidColor, notify.Warning)
		return
	}
	if t.colorPicker != nil {
		t.colorPicker.SetText(s)
	}
}

// Sync shows the active surface's tool, colour and width, after a tab change.
func (t *Toolbar) Sync() {
	c := t.active()
	if c == nil {
		return
	}
	_ = c.SetTool(c.Tool())
	st := c.State()
	if t.colorPicker != nil {
		t.colorPicker.SetText(st.StrokeColor)
	}
	t.width.SetValue(st.LineWidth)
}
