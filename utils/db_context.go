package utils

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds ordinary storage calls
const DefaultQueryTimeout = 30 * time.Second

// FastQueryTimeout is for single-row lookups
const FastQueryTimeout = 10 * time.Second

// GetQueryContext returns a context with the given timeout, derived from the
// parent when one is provided.
func GetQueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

// GetDefaultQueryContext returns a context with the default timeout.
func GetDefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, DefaultQueryTimeout)
}

// GetFastQueryContext returns a context with the fast lookup timeout.
func GetFastQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, FastQueryTimeout)
}
