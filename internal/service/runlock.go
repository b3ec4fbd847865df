package service

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// globalRunKey locks runs without a receiver filter.
const globalRunKey = "*"

// runLocks allows one in-flight run per receiver filter.
type runLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newRunLocks() *runLocks {
	return &runLocks{sems: make(map[string]*semaphore.Weighted)}
}

// tryAcquire returns a release func, or false when a run for key is active.
func (l *runLocks) tryAcquire(receiverID string) (func(), bool) {
	key := receiverID
	if key == "" {
		key = globalRunKey
	}

	l.mu.Lock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	l.mu.Unlock()

	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() { sem.Release(1) }, true
}
