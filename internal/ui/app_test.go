package ui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/config"
	"ClassroomBoard/internal/logger"
	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/shortcut"
	"ClassroomBoard/internal/state"
)

func newTestApp(t *testing.T, hide ...string) (*App, *board.Surface, *board.Surface) {
	t.Helper()
	conf := &config.Config{AppName: "test"}
	conf.UI.Hide = hide
	conf.UI.Question = "What is 6 x 7?"

	slide := board.New(board.Options{Name: ElementSlide, Width: 120, Height: 80})
	whiteboard := board.New(board.Options{Name: ElementWhiteboard, Width: 120, Height: 80})
	a := NewApp(test.NewApp(), Options{
		Config:     conf,
		Log:        logger.Discard(),
		Toasts:     NewToastLayer(),
		Slide:      slide,
		Whiteboard: whiteboard,
	})
	t.Cleanup(a.stop)
	return a, slide, whiteboard
}

func TestNewApp_Layout(t *testing.T) {
	a, _, _ := newTestApp(t)

	assert.NotNil(t, a.Layout.Slide)
	assert.NotNil(t, a.Layout.Whiteboard)
	assert.NotNil(t, a.Layout.ColorPicker)
	assert.NotNil(t, a.Layout.Timer)
	require.NotNil(t, a.Layout.Question)
	assert.Equal(t, "What is 6 x 7?", a.Layout.Question.Text)
	assert.Nil(t, a.Layout.StudentName, "no backend, no roster")
}

func TestNewApp_HiddenElements(t *testing.T) {
	a, _, whiteboard := newTestApp(t, ElementSlide, ElementTimer, ElementColorPicker, ElementQuestion)

	assert.Nil(t, a.Layout.Slide)
	assert.Nil(t, a.Layout.Timer)
	assert.Nil(t, a.Layout.ColorPicker)
	assert.Nil(t, a.Layout.Question)
	assert.Same(t, whiteboard, a.ActiveSurface())
	assert.Nil(t, a.timerAction)
}

func TestNewApp_NoSurfaces(t *testing.T) {
	a, _, _ := newTestApp(t, ElementSlide, ElementWhiteboard)
	assert.Nil(t, a.ActiveSurface())
	assert.Equal(t, shortcut.Pen, a.Press("p", false))
}

func TestApp_ToolShortcuts(t *testing.T) {
	a, slide, whiteboard := newTestApp(t)
	require.Same(t, slide, a.ActiveSurface())

	assert.Equal(t, shortcut.Eraser, a.Press("e", false))
	assert.Equal(t, state.ToolEraser, slide.State().Tool)
	assert.Equal(t, state.ToolPen, whiteboard.State().Tool, "only the active surface changes")

	a.tabs.SelectIndex(1)
	assert.Same(t, whiteboard, a.ActiveSurface())
	a.Press("e", false)
	a.Press("p", false)
	assert.Equal(t, state.ToolPen, whiteboard.State().Tool)
	assert.Equal(t, state.ToolEraser, slide.State().Tool)

	assert.Equal(t, shortcut.Undo, a.Press("z", true), "inert")
}

func TestToolbar_SetColor(t *testing.T) {
	a, slide, _ := newTestApp(t)

	a.toolbar.SetColor("#ff0000")
	assert.Equal(t, "#ff0000", slide.State().StrokeColor)
	assert.Equal(t, "#ff0000", a.Layout.ColorPicker.Text)

	a.toolbar.SetColor("not a colour")
	assert.Equal(t, "#ff0000", slide.State().StrokeColor)
	active := a.opts.Notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, msgInvalidColor, active[0].Message)
	assert.Equal(t, notify.Warning, active[0].Severity)
}

func TestSurfaceWidget_ReadOnly(t *testing.T) {
	s := board.New(board.Options{Width: 50, Height: 50})
	w := NewSurfaceWidget(s, true)
	w.input(w.Position(), board.PhaseDown)
	assert.False(t, s.Drawing())

	w = NewSurfaceWidget(s, false)
	w.SetCursor(board.CursorGrab)
	assert.NotEqual(t, NewSurfaceWidget(s, false).Cursor(), w.Cursor())
}

func TestToastLayer(t *testing.T) {
	test.NewApp()
	l := NewToastLayer()
	n := notify.New(l, time.Hour, logger.Discard())
	defer n.Close()

	toast := n.Push("hello", notify.Success)
	assert.Eventually(t, func() bool { return l.Count() == 1 }, time.Second, 5*time.Millisecond)

	n.Dismiss(toast.ID)
	assert.Eventually(t, func() bool { return l.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestToastLayer_CloseButtonDismisses(t *testing.T) {
	a, _, _ := newTestApp(t)
	toasts := a.opts.Toasts

	toast := a.opts.Notifier.Push("hello", notify.Info)
	require.Eventually(t, func() bool { return toasts.Count() == 1 }, time.Second, 5*time.Millisecond)

	toasts.mu.Lock()
	item := toasts.items[toast.ID]
	toasts.mu.Unlock()
	require.NotNil(t, item)
	test.Tap(item.close)

	assert.Eventually(t, func() bool { return toasts.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, a.opts.Notifier.Active())
	assert.False(t, a.opts.Notifier.Dismiss(toast.ID), "expiry after a close does nothing")
}

func TestToastLayer_ExpiryAfterClose(t *testing.T) {
	test.NewApp()
	l := NewToastLayer()
	n := notify.New(l, 200*time.Millisecond, logger.Discard())
	defer n.Close()
	l.OnDismiss = func(id string) { n.Dismiss(id) }

	first := n.Push("first", notify.Info)
	n.Push("second", notify.Info)
	require.Equal(t, 2, l.Count())

	l.mu.Lock()
	item := l.items[first.ID]
	l.mu.Unlock()
	require.NotNil(t, item)
	test.Tap(item.close)
	assert.Equal(t, 1, l.Count())

	assert.Eventually(t, func() bool { return l.Count() == 0 }, time.Second, 5*time.Millisecond,
		"the other toast still expires")
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, n.Active())
	assert.Zero(t, l.Count())
}

func TestApp_StopStopsTimer(t *testing.T) {
	a, _, _ := newTestApp(t)
	require.NotNil(t, a.timer)

	a.toggleTimer()
	require.True(t, a.timer.Running())
	assert.Equal(t, theme.MediaStopIcon(), a.timerAction.Icon)

	a.stop()
	assert.False(t, a.timer.Running())
	assert.Error(t, a.Context().Err())
}

func TestApp_ToggleTimer(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.toggleTimer()
	assert.True(t, a.timer.Running())
	a.toggleTimer()
	assert.False(t, a.timer.Running())
	assert.Equal(t, theme.MediaPlayIcon(), a.timerAction.Icon)
}
