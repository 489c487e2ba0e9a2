package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const readAttempts = 3

// WithRetry re-runs fn on transient store errors. Only reads go through
// here: the stock decrement is not idempotent and must reach the server
// at most once.
func WithRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	var err error

	for attempt := 0; attempt < readAttempts; attempt++ {
		out, err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return out, err
		}

		select {
		case <-ctx.Done():
			return out, err
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}

	return out, err
}

func IsTransient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
