package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps outgoing operations with this process' site id and a
// monotonically increasing sequence number.
type Clock struct {
	site string
	seq  uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string {
	return c.site
}

// Tick returns the next sequence number.
func (c *Clock) Tick() uint64 {
	return atomic.AddUint64(&c.seq, 1)
}
