package authn

import (
	"context"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

type identityContextKey struct{}
type tokenContextKey struct{}

// WithIdentity scopes the resolved identity and its raw token to one request.
func WithIdentity(ctx context.Context, user *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, identityContextKey{}, user)
	return context.WithValue(ctx, tokenContextKey{}, token)
}

func IdentityFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(identityContextKey{}).(*models.User)
	return u, ok && u != nil
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenContextKey{}).(string)
	return t, ok && t != ""
}
