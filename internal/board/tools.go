package board

import (
	"sync"

	"github.com/pkg/errors"

	"ClassroomBoard/internal/state"
)

var ErrUnknownTool = errors.New("unknown tool")

// Cursor is the pointer affordance shown over a surface.
type Cursor string

const (
	CursorCrosshair Cursor = "crosshair"
	CursorGrab      Cursor = "grab"
)

func CursorFor(t state.Tool) Cursor {
	if t == state.ToolEraser {
		return CursorGrab
	}
	return CursorCrosshair
}

// Indicator is a tool button that can be shown as active.
type Indicator interface {
	SetActive(active bool)
}

type CursorSetter interface {
	SetCursor(c Cursor)
}

// ToolController switches a surface's tool and keeps the cursor and the tool
// buttons in sync. Buttons are bound by tool id, not by position.
type ToolController struct {
	surface    *Surface
	cursor     CursorSetter
	indicators map[state.Tool]Indicator
	mu         sync.Mutex
}

func NewToolController(s *Surface, cursor CursorSetter) *ToolController {
	return &ToolController{
		surface:    s,
		cursor:     cursor,
		indicators: make(map[state.Tool]Indicator),
	}
}

// Bind registers the indicator for tool. The indicator of the current tool
// is activated immediately.
func (c *ToolController) Bind(tool state.Tool, ind Indicator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indicators[tool] = ind
	ind.SetActive(c.surface.State().Tool == tool)
}

func (c *ToolController) Tool() state.Tool {
	return c.surface.State().Tool
}

func (c *ToolController) State() state.SurfaceState {
	return c.surface.State()
}

func (c *ToolController) Surface() *Surface { return c.surface }

// SetTool changes the tool. Unknown tools are rejected and nothing changes.
func (c *ToolController) SetTool(tool state.Tool) error {
	if err := c.surface.SetTool(tool); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor != nil {
		c.cursor.SetCursor(CursorFor(tool))
	}
	for t, ind := range c.indicators {
		ind.SetActive(t == tool)
	}
	return nil
}

// SetColor validates and applies a stroke colour; the previous colour is kept
// on error.
func (c *ToolController) SetColor(col string) error {
	return c.surface.SetStrokeColor(col)
}

func (c *ToolController) SetLineWidth(w float64) {
	c.surface.SetLineWidth(w)
}
