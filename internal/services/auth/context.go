package auth

import (
	"context"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
)

// Identity is the authenticated reviewer attached to the request
// context by the auth middleware.
type Identity struct {
	ReviewerID  string
	Role        enums.Role
	DisplayName string
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}
