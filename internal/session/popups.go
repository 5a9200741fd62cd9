package session

import "sync"

// PopupTracker remembers which promotional popups were already shown. It is
// deliberately per-process and never persisted, separate from the durable
// session keys: every restart shows the popups again.
type PopupTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewPopupTracker() *PopupTracker {
	return &PopupTracker{seen: make(map[string]struct{})}
}

// MarkSeen records the popup id and reports whether it was new.
func (t *PopupTracker) MarkSeen(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = struct{}{}
	return true
}

func (t *PopupTracker) Seen(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[id]
	return ok
}
