package net

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"ClassroomBoard/internal/logger"
	"ClassroomBoard/internal/state"
)

const (
	CustomURLScheme = "classboard://"
	MirrorPath      = "/mirror"

	writeWait  = 2 * time.Second
	sendBuffer = 256
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeSegment  = "segment"
	TypeClear    = "clear"
	TypeSlide    = "slide"
)

// Message is one mirrored surface operation.
type Message struct {
	Type    string         `json:"type"`
	Surface string         `json:"surface"`
	Site    string         `json:"site,omitempty"`
	Seq     uint64         `json:"seq,omitempty"`
	Segment *state.Segment `json:"segment,omitempty"`
	Image   []byte         `json:"image,omitempty"` // PNG
	Join    bool           `json:"join,omitempty"`  // part of the snapshot sent on connect
}

// EncodeImage PNG-encodes img for a snapshot or slide message.
func EncodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

// Hub is run by the presenter. It keeps the connected viewers and
// broadcasts every surface operation to them. Each viewer has its own
// outbound queue and writer goroutine so a slow viewer never blocks drawing.
type Hub struct {
	conns    map[*viewerConn]bool
	mu       sync.Mutex
	clock    *state.Clock
	snapshot func() []Message
	upgrader websocket.Upgrader
	log      logger.Logger
}

type viewerConn struct {
	conn *websocket.Conn
	send chan Message
	addr string
}

// NewHub creates a hub. snapshot returns the messages that bring a new
// viewer up to date; it may be nil.
func NewHub(snapshot func() []Message, log logger.Logger) *Hub {
	return &Hub{
		conns:    make(map[*viewerConn]bool),
		clock:    state.NewClock(),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Hub) Site() string { return h.clock.Site() }

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// ServeHTTP upgrades the request and keeps the viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(fmt.Sprintf("[MIRROR] Upgrade from %s failed", r.RemoteAddr), err)
		return
	}
	v := &viewerConn{conn: conn, send: make(chan Message, sendBuffer), addr: conn.RemoteAddr().String()}

	// Broadcasts stamped after base are queued for v. Anything stamped
	// before it was painted before the snapshot below is taken.
	h.mu.Lock()
	base := h.clock.Tick()
	h.conns[v] = true
	h.mu.Unlock()
	h.log.Info("[MIRROR] Viewer connected: " + v.addr)

	var join []Message
	if h.snapshot != nil {
		join = h.snapshot()
	}
	go h.writeLoop(v, join, base)

	defer h.remove(v)
	for {
		// Viewers are read-only; reading only detects disconnects.
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Info(fmt.Sprintf("[MIRROR] Viewer %s disconnected: %v", v.addr, err))
			return
		}
	}
}

// writeLoop is the only writer of v.conn. It sends the join snapshot first,
// then the queued broadcasts until v is removed.
func (h *Hub) writeLoop(v *viewerConn, join []Message, base uint64) {
	for _, msg := range join {
		msg.Site, msg.Seq, msg.Join = h.clock.Site(), base, true
		if err := write(v.conn, msg); err != nil {
			h.log.Warn("[MIRROR] Failed to send snapshot to "+v.addr, err)
			h.remove(v)
			return
		}
	}
	for msg := range v.send {
		if err := write(v.conn, msg); err != nil {
			h.log.Warn("[MIRROR] Error sending to "+v.addr, err)
			h.remove(v)
			return
		}
	}
}

func (h *Hub) remove(v *viewerConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(v)
}

// drop must be called with h.mu held.
func (h *Hub) drop(v *viewerConn) {
	if !h.conns[v] {
		return
	}
	delete(h.conns, v)
	close(v.send)
	v.conn.Close()
}

func (h *Hub) stamp(msg Message) Message {
	msg.Site = h.clock.Site()
	msg.Seq = h.clock.Tick()
	return msg
}

func write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// Broadcast queues msg for every viewer without blocking. A viewer whose
// queue is full has fallen too far behind and is dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg = h.stamp(msg)
	for v := range h.conns {
		select {
		case v.send <- msg:
		default:
			h.log.Warn("[MIRROR] Dropping slow viewer "+v.addr, errors.New("send queue full"))
			h.drop(v)
		}
	}
}

func (h *Hub) PublishSegment(seg state.Segment) {
	h.Broadcast(Message{Type: TypeSegment, Surface: seg.Surface, Segment: &seg})
}

func (h *Hub) PublishClear(surface string) {
	h.Broadcast(Message{Type: TypeClear, Surface: surface})
}

func (h *Hub) PublishSlide(surface string, img image.Image) {
	data, err := EncodeImage(img)
	if err != nil {
		h.log.Error("[MIRROR] Failed to encode slide", err)
		return
	}
	h.Broadcast(Message{Type: TypeSlide, Surface: surface, Image: data})
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.conns {
		_ = v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "presenter closed"),
			time.Now().Add(writeWait))
		h.drop(v)
	}
}

// Surface is what a viewer needs from a drawing surface to replay
// operations.
type Surface interface {
	ApplySegment(seg state.Segment)
	ClearNow()
	Restore(img image.Image)
	LoadImage(img image.Image)
}

// Viewer replays a presenter's operations onto local surfaces, keyed by
// surface name.
type Viewer struct {
	surfaces map[string]Surface
	seen     *state.SeqTracker
	log      logger.Logger
}

func NewViewer(surfaces map[string]Surface, log logger.Logger) *Viewer {
	return &Viewer{surfaces: surfaces, seen: state.NewSeqTracker(), log: log}
}

// ParseLink turns classboard://host:port into a websocket URL.
func ParseLink(link string) (string, error) {
	addr := strings.TrimPrefix(link, CustomURLScheme)
	addr = strings.TrimSuffix(addr, "/")
	if addr == "" || addr == link {
		return "", errors.Errorf("not a %s link: %q", CustomURLScheme, link)
	}
	return "ws://" + addr + MirrorPath, nil
}

// ShareLink is the link viewers use to join a presenter at host:port.
func ShareLink(host string, port int) string {
	return fmt.Sprintf("%s%s:%d", CustomURLScheme, host, port)
}

// Dial connects to a presenter's mirror endpoint.
func Dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", wsURL)
	}
	return conn, nil
}

// Run reads messages from conn until it fails or ctx is done.
func (v *Viewer) Run(ctx context.Context, conn *websocket.Conn) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read mirror message")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			v.log.Warn("[MIRROR] Bad message", err)
			continue
		}
		v.Apply(msg)
	}
}

// Apply replays one message. It returns false when the message was a
// duplicate, stale, or addressed to an unknown surface.
func (v *Viewer) Apply(msg Message) bool {
	s, ok := v.surfaces[msg.Surface]
	if !ok {
		v.log.Debug("[MIRROR] Unknown surface " + msg.Surface)
		return false
	}
	if msg.Join {
		// A join snapshot starts a new session, e.g. after the presenter
		// restarted or the viewer reconnected.
		v.seen.Reset(msg.Site)
	}
	if !v.seen.Accept(msg.Site, msg.Seq) {
		v.log.Debug(fmt.Sprintf("[MIRROR] Dropped %s %d from %s (last %d)",
			msg.Type, msg.Seq, msg.Site, v.seen.Last(msg.Site)))
		return false
	}

	switch msg.Type {
	case TypeSegment:
		if msg.Segment == nil {
			return false
		}
		s.ApplySegment(*msg.Segment)
	case TypeClear:
		s.ClearNow()
	case TypeSnapshot, TypeSlide:
		img, err := png.Decode(bytes.NewReader(msg.Image))
		if err != nil {
			v.log.Warn("[MIRROR] Bad image in "+msg.Type, err)
			return false
		}
		if msg.Type == TypeSlide {
			s.LoadImage(img)
		} else {
			s.Restore(img)
		}
	default:
		return false
	}
	return true
}
