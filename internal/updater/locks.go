package updater

import "sync"

// KeyedLocks serializes read-merge-write sequences per normalized identity.
// Two updates racing on the same identity observe each other in issuance
// order; updates for different identities never contend.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedLocks creates an empty lock set.
func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key, creating it on first use.
func (k *KeyedLocks) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
}

// Unlock releases the lock for key. Unlocking a key that was never locked
// panics, same as sync.Mutex.
func (k *KeyedLocks) Unlock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		panic("updater: unlock of unknown key " + key)
	}
	l.Unlock()
}
