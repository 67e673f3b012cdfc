package board

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ClassroomBoard/internal/state"
)

type fakeIndicator struct{ active bool }

func (i *fakeIndicator) SetActive(active bool) { i.active = active }

type fakeCursor struct{ cursor Cursor }

func (c *fakeCursor) SetCursor(cur Cursor) { c.cursor = cur }

func TestToolController_SetTool(t *testing.T) {
	s, _ := newTestSurface(t)
	cur := &fakeCursor{}
	c := NewToolController(s, cur)
	pen, eraser := &fakeIndicator{}, &fakeIndicator{}
	c.Bind(state.ToolPen, pen)
	c.Bind(state.ToolEraser, eraser)

	assert.True(t, pen.active, "current tool is shown on bind")
	assert.False(t, eraser.active)

	tests := []struct {
		tool       state.Tool
		wantCursor Cursor
		wantPen    bool
		wantEraser bool
	}{
		{state.ToolEraser, CursorGrab, false, true},
		{state.ToolPen, CursorCrosshair, true, false},
		{state.ToolEraser, CursorGrab, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			require.NoError(t, c.SetTool(tt.tool))
			assert.Equal(t, tt.tool, c.Tool())
			assert.Equal(t, tt.tool, s.State().Tool)
			assert.Equal(t, tt.wantCursor, cur.cursor)
			assert.Equal(t, tt.wantPen, pen.active)
			assert.Equal(t, tt.wantEraser, eraser.active)
		})
	}
}

func TestToolController_UnknownTool(t *testing.T) {
	s, _ := newTestSurface(t)
	cur := &fakeCursor{}
	c := NewToolController(s, cur)
	pen := &fakeIndicator{}
	c.Bind(state.ToolPen, pen)

	err := c.SetTool("highlighter")
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Equal(t, state.ToolPen, c.Tool())
	assert.True(t, pen.active)
	assert.Empty(t, cur.cursor)
}

func TestToolController_ColourAndWidth(t *testing.T) {
	s, _ := newTestSurface(t)
	c := NewToolController(s, nil)

	require.NoError(t, c.SetColor("#00f"))
	assert.Error(t, c.SetColor("purpleish"))
	c.SetLineWidth(8)

	st := c.State()
	assert.Equal(t, "#00f", st.StrokeColor)
	assert.Equal(t, 8.0, st.LineWidth)
	assert.Same(t, s, c.Surface())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#000000", want: color.NRGBA{A: 255}},
		{in: "#FF8000", want: color.NRGBA{R: 255, G: 128, A: 255}},
		{in: "#fff", want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: " red ", want: color.NRGBA{R: 255, A: 255}},
		{in: "", wantErr: true},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "nocolour", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidColor))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatColor(t *testing.T) {
	assert.Equal(t, "#ff8000", FormatColor(color.NRGBA{R: 255, G: 128, A: 255}))
	assert.Equal(t, "#000000", FormatColor(color.Black))
}
