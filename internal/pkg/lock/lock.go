// Package lock provides per-key mutexes used to serialize work on a single player.
package lock

import "sync"

type keyMutex struct {
	mu   sync.Mutex
	refs int
}

// KeyLock hands out one mutex per key and forgets it once nobody holds or
// waits on it, so the map does not grow with every player ever seen.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyMutex)}
}

// Lock blocks until the lock for key is held.
func (l *KeyLock) Lock(key string) {
	l.mu.Lock()
	km, ok := l.locks[key]
	if !ok {
		km = &keyMutex{}
		l.locks[key] = km
	}
	km.refs++
	l.mu.Unlock()

	km.mu.Lock()
}

// Unlock releases the lock for key. Unlocking a key that is not held is a no-op.
func (l *KeyLock) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	km, ok := l.locks[key]
	if !ok {
		return
	}
	km.refs--
	if km.refs <= 0 {
		delete(l.locks, key)
	}
	km.mu.Unlock()
}

// Size returns the number of keys currently held or waited on.
func (l *KeyLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
