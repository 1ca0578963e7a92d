package usecase

import "sync"

// ScopeLocks serializes scope deletion against in-flight ingestion and
// queries (writer vs. readers) and serializes the dedup check-then-record
// sequence per (scope, fingerprint).
type ScopeLocks struct {
	mu     sync.Mutex
	scopes map[string]*sync.RWMutex
	keyed  map[string]*sync.Mutex
}

func NewScopeLocks() *ScopeLocks {
	return &ScopeLocks{
		scopes: make(map[string]*sync.RWMutex),
		keyed:  make(map[string]*sync.Mutex),
	}
}

func (l *ScopeLocks) scopeLock(scope string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.scopes[scope]
	if !ok {
		lock = &sync.RWMutex{}
		l.scopes[scope] = lock
	}
	return lock
}

// Acquire blocks while the scope is being deleted. The returned release
// function must be called when the operation finishes.
func (l *ScopeLocks) Acquire(scope string) (release func()) {
	lock := l.scopeLock(scope)
	lock.RLock()
	return lock.RUnlock
}

// AcquireExclusive blocks until no ingestion or query holds the scope, then
// excludes them for the duration of a deletion.
func (l *ScopeLocks) AcquireExclusive(scope string) (release func()) {
	lock := l.scopeLock(scope)
	lock.Lock()
	return lock.Unlock
}

// AcquireFingerprint serializes the dedup critical section for one content
// fingerprint within a scope, so concurrent uploads of identical bytes
// cannot both observe "new".
func (l *ScopeLocks) AcquireFingerprint(scope, fingerprint string) (release func()) {
	key := scope + "\x00" + fingerprint
	l.mu.Lock()
	lock, ok := l.keyed[key]
	if !ok {
		lock = &sync.Mutex{}
		l.keyed[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
