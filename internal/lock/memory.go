package lock

import (
	"context"
	"sync"
)

// MemoryLocker is a process-local Locker for single-instance deployments and
// tests. It has the same try-once semantics as the Redis implementation.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]struct{}),
	}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, name string) (Handle, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[name]; taken {
		return nil, false, nil
	}

	l.held[name] = struct{}{}

	return &memoryHandle{locker: l, name: name}, true, nil
}

type memoryHandle struct {
	locker *MemoryLocker
	name   string
	once   sync.Once
}

func (h *memoryHandle) Release(_ context.Context) {
	h.once.Do(func() {
		h.locker.mu.Lock()
		defer h.locker.mu.Unlock()
		delete(h.locker.held, h.name)
	})
}
