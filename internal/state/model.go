package state

// Tool is the active drawing mode of a surface.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

// Valid reports whether t is one of the known tools.
func (t Tool) Valid() bool {
	return t == ToolPen || t == ToolEraser
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SurfaceState is the per-surface drawing state.
// Drawing is true only between a pointer-down and the matching up/out.
type SurfaceState struct {
	Drawing     bool    `json:"drawing"`
	Tool        Tool    `json:"tool"`
	StrokeColor string  `json:"stroke_color"`
	LineWidth   float64 `json:"line_width"`
}

// Segment is one committed piece of ink, from the previous pointer position
// to the current one.
type Segment struct {
	Surface string  `json:"surface"`
	From    Point   `json:"from"`
	To      Point   `json:"to"`
	Tool    Tool    `json:"tool"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Dot     bool    `json:"dot,omitempty"` // stroke start, From == To
}
