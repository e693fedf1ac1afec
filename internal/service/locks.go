package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes mutations per tournament. Entries are dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// tournamentLocks is shared by every service in the process.
var tournamentLocks = &keyedMutex{locks: make(map[uuid.UUID]*refMutex)}

// Lock blocks until the key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
