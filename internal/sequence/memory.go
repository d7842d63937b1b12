package sequence

import (
	"context"
	"sync/atomic"
)

// MemoryGenerator is a process-local Generator for single-instance
// deployments and tests.
type MemoryGenerator struct {
	counter atomic.Int64
}

func NewMemoryGenerator() *MemoryGenerator {
	return &MemoryGenerator{}
}

func (g *MemoryGenerator) Next(_ context.Context) (int64, error) {
	return g.counter.Add(1), nil
}
