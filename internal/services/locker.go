package services

import (
	"slices"
	"sync"
)

// accountLocker serializes read-modify-write cycles per account id within
// one process. Entries are reference counted and removed when unused.
type accountLocker struct {
	mu    sync.Mutex
	locks map[int64]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func newAccountLocker() *accountLocker {
	return &accountLocker{locks: make(map[int64]*accountLock)}
}

// Lock acquires the locks for all ids in ascending order and returns the
// function releasing them. Duplicate ids are locked once.
func (l *accountLocker) Lock(ids ...int64) (unlock func()) {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]*accountLock, 0, len(ordered))
	for _, id := range ordered {
		lk := l.acquire(id)
		lk.mu.Lock()
		held = append(held, lk)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *accountLocker) acquire(id int64) *accountLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[id]
	if !ok {
		lk = &accountLock{}
		l.locks[id] = lk
	}
	lk.refs++
	return lk
}

func (l *accountLocker) release(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk := l.locks[id]
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}

// size returns the number of live entries.
func (l *accountLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
