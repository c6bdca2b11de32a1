package services

import "sync"

// lockTable hands out one mutex per room so draws and settlements on the
// same room serialize while different rooms proceed independently.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(roomID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[roomID] = l
	}
	return l
}
