package chat

import "sync"

// sessionLocks serializes turn execution per session so the read-max-index,
// write-next-two sequence never races itself. Entries are never removed; the
// map grows with the set of sessions seen by this process, which is bounded
// by experiment size.
type sessionLocks struct {
	mu sync.Map // session id -> *sync.Mutex
}

func (l *sessionLocks) lock(sessionID string) func() {
	v, _ := l.mu.LoadOrStore(sessionID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
