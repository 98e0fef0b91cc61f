package persist

import "sync"

// PendingSet holds the temporary ids of trips whose create request has not
// completed. Saves targeting a pending id are suppressed: the server has no
// resource under that id yet.
type PendingSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewPendingSet returns an empty PendingSet.
func NewPendingSet() *PendingSet {
	return &PendingSet{ids: make(map[string]struct{})}
}

// Add marks id as pending.
func (p *PendingSet) Add(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[id] = struct{}{}
}

// Remove clears id from the set. Removing an absent id is a no-op.
func (p *PendingSet) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, id)
}

// Has reports whether id is pending.
func (p *PendingSet) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.ids[id]
	return ok
}

// Len returns the number of pending ids.
func (p *PendingSet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ids)
}
