package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("Success first try", func(t *testing.T) {
		calls := 0
		out, err := WithRetry(ctx, func(context.Context) (int, error) {
			calls++
			return 42, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 42, out)
		assert.Equal(t, 1, calls)
	})

	t.Run("Non-transient error is not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		_, err := WithRetry(ctx, func(context.Context) (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
