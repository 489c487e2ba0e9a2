package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFrom(ctx))
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}

func TestFromCtx(t *testing.T) {
	Init("development")

	t.Run("WithRequestID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-456")
		assert.NotNil(t, FromCtx(ctx))
	})

	t.Run("WithoutRequestID", func(t *testing.T) {
		assert.NotNil(t, FromCtx(context.Background()))
	})
}
