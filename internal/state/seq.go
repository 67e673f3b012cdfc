package state

import (
	"log"
	"sync"
)

// SeqTracker remembers the highest sequence number seen per site so that
// replayed or duplicated operations are applied at most once.
type SeqTracker struct {
	seen map[string]uint64
	mu   sync.Mutex
}

func NewSeqTracker() *SeqTracker {
	return &SeqTracker{seen: make(map[string]uint64)}
}

// Accept returns true if seq is newer than anything seen from site and
// records it. Operations without a site are always accepted.
func (t *SeqTracker) Accept(site string, seq uint64) bool {
	if site == "" {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.seen[site]; ok && seq <= last {
		log.Printf("[SEQ] Dropping op %d from site %s (last %d)", seq, site, last)
		return false
	}
	t.seen[site] = seq
	return true
}

// Last returns the highest sequence number accepted from site.
func (t *SeqTracker) Last(site string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[site]
}

// Reset forgets a site, e.g. after the presenter restarted.
func (t *SeqTracker) Reset(site string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seen, site)
}
