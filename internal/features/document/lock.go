package document

import "sync"

// docLocks hands out one mutex per document id so that every engine call is a
// read-modify-write critical section. Entries are reference counted and
// removed when the last holder releases, keeping the map bounded by the
// number of in-flight operations.
type docLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newDocLocks() *docLocks {
	return &docLocks{entries: make(map[string]*lockEntry)}
}

// Lock blocks until the document's mutex is held and returns the release func.
func (l *docLocks) Lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
