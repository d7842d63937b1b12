package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGeneratorMonotonic(t *testing.T) {
	gen := NewMemoryGenerator()
	ctx := context.Background()

	previous := int64(0)
	for i := 0; i < 100; i++ {
		id, err := gen.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, id, previous)
		previous = id
	}
}

func TestMemoryGeneratorConcurrentUniqueness(t *testing.T) {
	gen := NewMemoryGenerator()
	ctx := context.Background()

	const calls = 10000

	ids := make(chan int64, calls)

	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gen.Next(ctx)
			assert.NoError(t, err)
			ids <- id
		}()
	}

	wg.Wait()
	close(ids)

	collected := make([]int64, 0, calls)
	for id := range ids {
		collected = append(collected, id)
	}
	require.Len(t, collected, calls)

	// globally ordered, the ids are distinct and strictly increasing
	sort.Slice(collected, func(i, j int) bool { return collected[i] < collected[j] })
	for i := 1; i < len(collected); i++ {
		assert.Greater(t, collected[i], collected[i-1])
	}
	assert.Equal(t, int64(1), collected[0])
	assert.Equal(t, int64(calls), collected[len(collected)-1])
}
