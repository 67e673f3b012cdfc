package net

import (
	"context"
	"image"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/logger"
	"ClassroomBoard/internal/state"
)

func newSurface() *board.Surface {
	return board.New(board.Options{Name: "whiteboard", Width: 120, Height: 80, LineWidth: 3})
}

// rastersMatch reports whether two rasters match within a PNG round-trip's rounding.
func rastersMatch(a, b *image.RGBA) bool {
	if len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < -3 || d > 3 {
			return false
		}
	}
	return true
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		link    string
		want    string
		wantErr bool
	}{
		{link: "classboard://192.168.1.5:8888", want: "ws://192.168.1.5:8888/mirror"},
		{link: "classboard://host:1/", want: "ws://host:1/mirror"},
		{link: "classboard://", wantErr: true},
		{link: "http://host:1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := ParseLink(tt.link)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "classboard://10.0.0.2:8888", ShareLink("10.0.0.2", 8888))
}

func TestMirror_ViewerConverges(t *testing.T) {
	presenter := newSurface()
	presenter.PointerDown(10, 10)
	presenter.PointerMove(100, 60)
	presenter.PointerUp()

	hub := NewHub(func() []Message {
		data, err := EncodeImage(presenter.Snapshot())
		if err != nil {
			t.Error(err)
			return nil
		}
		return []Message{{Type: TypeSnapshot, Surface: presenter.Name(), Image: data}}
	}, logger.Discard())
	presenter.OnSegment = hub.PublishSegment
	presenter.OnClear = func() { hub.PublishClear(presenter.Name()) }

	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	local := newSurface()
	viewer := NewViewer(map[string]Surface{local.Name(): local}, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+MirrorPath)
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- viewer.Run(ctx, conn) }()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return rastersMatch(presenter.Snapshot(), local.Snapshot()) },
		time.Second, 5*time.Millisecond, "snapshot on join")

	presenter.PointerDown(20, 70)
	presenter.PointerMove(110, 20)
	presenter.PointerUp()
	assert.Eventually(t, func() bool { return rastersMatch(presenter.Snapshot(), local.Snapshot()) },
		time.Second, 5*time.Millisecond, "live segments")
	assert.NotZero(t, local.Snapshot().RGBAAt(65, 45).A)

	presenter.ClearNow()
	assert.Eventually(t, func() bool { return local.Snapshot().RGBAAt(65, 45).A == 0 },
		time.Second, 5*time.Millisecond, "clear")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("viewer did not stop")
	}
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestViewer_Apply(t *testing.T) {
	local := newSurface()
	v := NewViewer(map[string]Surface{"whiteboard": local}, logger.Discard())
	seg := &state.Segment{
		Surface: "whiteboard",
		From:    state.Point{X: 10, Y: 40}, To: state.Point{X: 110, Y: 40},
		Tool: state.ToolPen, Color: "#000000", Width: 4,
	}

	assert.True(t, v.Apply(Message{Type: TypeSegment, Surface: "whiteboard", Site: "p", Seq: 1, Segment: seg}))
	assert.NotZero(t, local.Snapshot().RGBAAt(60, 40).A)

	tests := []struct {
		name string
		msg  Message
	}{
		{"duplicate", Message{Type: TypeClear, Surface: "whiteboard", Site: "p", Seq: 1}},
		{"stale", Message{Type: TypeClear, Surface: "whiteboard", Site: "p", Seq: 0}},
		{"unknown surface", Message{Type: TypeClear, Surface: "pptCanvas", Site: "p", Seq: 5}},
		{"missing segment", Message{Type: TypeSegment, Surface: "whiteboard", Site: "p", Seq: 6}},
		{"bad image", Message{Type: TypeSnapshot, Surface: "whiteboard", Site: "p", Seq: 7, Image: []byte("nope")}},
		{"unknown type", Message{Type: "undo", Surface: "whiteboard", Site: "p", Seq: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, v.Apply(tt.msg))
			assert.NotZero(t, local.Snapshot().RGBAAt(60, 40).A, "ink untouched")
		})
	}

	assert.True(t, v.Apply(Message{Type: TypeClear, Surface: "whiteboard", Site: "p", Seq: 9}))
	assert.Zero(t, local.Snapshot().RGBAAt(60, 40).A)
}

func TestViewer_ApplyJoinStartsNewSession(t *testing.T) {
	local := newSurface()
	v := NewViewer(map[string]Surface{"whiteboard": local}, logger.Discard())
	seg := &state.Segment{
		Surface: "whiteboard",
		From:    state.Point{X: 10, Y: 40}, To: state.Point{X: 110, Y: 40},
		Tool: state.ToolPen, Color: "#000000", Width: 4,
	}
	require.True(t, v.Apply(Message{Type: TypeSegment, Surface: "whiteboard", Site: "p", Seq: 40, Segment: seg}))

	// The presenter restarted and counts from 1 again.
	assert.True(t, v.Apply(Message{Type: TypeClear, Surface: "whiteboard", Site: "p", Seq: 1, Join: true}))
	assert.True(t, v.Apply(Message{Type: TypeClear, Surface: "whiteboard", Site: "p", Seq: 1, Join: true}),
		"every message of the snapshot shares its sequence")
	assert.Zero(t, local.Snapshot().RGBAAt(60, 40).A)

	assert.True(t, v.Apply(Message{Type: TypeSegment, Surface: "whiteboard", Site: "p", Seq: 2, Segment: seg}))
	assert.False(t, v.Apply(Message{Type: TypeSegment, Surface: "whiteboard", Site: "p", Seq: 2, Segment: seg}))
	assert.NotZero(t, local.Snapshot().RGBAAt(60, 40).A)
}

func TestHub_SlowViewerDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub(nil, logger.Discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	// This viewer never reads, so its socket and then its queue fill up.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+MirrorPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	payload := make([]byte, 64<<10)
	var worst time.Duration
	for i := 0; i < 2000 && hub.Count() > 0; i++ {
		start := time.Now()
		hub.Broadcast(Message{Type: TypeSlide, Surface: "whiteboard", Image: payload})
		if d := time.Since(start); d > worst {
			worst = d
		}
	}
	assert.Less(t, worst, writeWait/4, "broadcast never waits on a viewer")
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*writeWait, 10*time.Millisecond,
		"slow viewer is dropped")
}

func TestViewer_ApplySlide(t *testing.T) {
	local := newSurface()
	v := NewViewer(map[string]Surface{"whiteboard": local}, logger.Discard())

	slide := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for i := 0; i < len(slide.Pix); i += 4 {
		slide.Pix[i], slide.Pix[i+3] = 255, 255
	}
	data, err := EncodeImage(slide)
	require.NoError(t, err)

	assert.True(t, v.Apply(Message{Type: TypeSlide, Surface: "whiteboard", Image: data}))
	require.NotNil(t, local.Slide())
	px := local.Snapshot().RGBAAt(60, 40)
	assert.InDelta(t, 255, px.R, 2)

	local.ClearNow()
	assert.Equal(t, px, local.Snapshot().RGBAAt(60, 40),
		"clear keeps the mirrored slide")
}
