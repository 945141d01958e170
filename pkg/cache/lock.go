package cache

import "sync"

// ChanLocker runs at most one function per key at a time. Callers arriving while the key is
// held wait for the running function to finish and do not run their own.
type ChanLocker struct {
	mu      sync.Mutex
	waiters map[interface{}]chan struct{}
}

func NewChanLocker() *ChanLocker {
	return &ChanLocker{
		waiters: make(map[interface{}]chan struct{}),
	}
}

// Lock runs fn if no other fn is running for k and reports whether it did. Otherwise it
// blocks until the running fn completes and returns false.
func (l *ChanLocker) Lock(k interface{}, fn func()) bool {
	l.mu.Lock()
	if ch, ok := l.waiters[k]; ok {
		l.mu.Unlock()
		<-ch
		return false
	}
	ch := make(chan struct{})
	l.waiters[k] = ch
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.waiters, k)
		l.mu.Unlock()
		close(ch)
	}()
	fn()
	return true
}
