// Package sequence produces globally unique, monotonically increasing
// transaction identifiers.
package sequence

import (
	"context"
)

// Generator hands out transaction identifiers. Every call returns a value
// strictly greater than all previously returned values; no two concurrent
// callers ever receive the same value.
type Generator interface {
	Next(ctx context.Context) (int64, error)
}
