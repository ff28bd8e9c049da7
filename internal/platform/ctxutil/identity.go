package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type identityKey struct{}

// Identity is the caller resolved from the request. UserID may be uuid.Nil when
// only an email is known; stores resolve by id first and fall back to email.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	SessionID uuid.UUID
	Source    string
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(Default(ctx), identityKey{}, id)
}

func GetIdentity(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	if id, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return id
	}
	return nil
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
