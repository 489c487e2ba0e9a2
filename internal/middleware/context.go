package middleware

import (
	"context"

	"shopmart-be/internal/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the resolved caller, attached to the request context by
// RequireAuth.
type Identity struct {
	UserID primitive.ObjectID
	Name   string
	Email  string
	Role   user.Role
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
