package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict is returned when a conditional update matched nothing.
	ErrConflict = errors.New("document changed concurrently")
)

// DefaultTimeout bounds every single-document store call.
const DefaultTimeout = 5 * time.Second

// WithTimeout derives a store-call context from the caller's context.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultTimeout)
}

// Page converts a 1-based page and limit into a skip count.
func Page(page, limit int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * limit)
}
