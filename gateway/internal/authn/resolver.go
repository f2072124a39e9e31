package authn

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/pkg/tokens"
)

// ErrUnauthorized matches every AuthError.
var ErrUnauthorized = errors.New("unauthorized")

type Reason string

const (
	ReasonNoToken          Reason = "no_token"
	ReasonRevoked          Reason = "revoked"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonUnknownIdentity  Reason = "unknown_identity"
	ReasonStoreUnavailable Reason = "store_unavailable"
)

type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

func (e *AuthError) Unwrap() error { return e.Err }

func fail(reason Reason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type IdentityLoader interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Resolver struct {
	Revocations RevocationChecker
	Identities  IdentityLoader
	Secret      []byte
}

const bearerPrefix = "Bearer "

// ExtractBearer accepts exactly "Bearer <token>"; the scheme is case-sensitive.
func ExtractBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authenticate checks revocation first, then signature and expiry, then
// loads the identity named by the token. Any store failure rejects.
func (r *Resolver) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fail(ReasonNoToken, nil)
	}

	revoked, err := r.Revocations.IsRevoked(ctx, token)
	if err != nil {
		return nil, fail(ReasonStoreUnavailable, err)
	}
	if revoked {
		return nil, fail(ReasonRevoked, nil)
	}

	claims, err := tokens.Verify(token, r.Secret)
	if err != nil {
		return nil, fail(ReasonInvalidSignature, err)
	}

	user, err := r.Identities.FindUserByID(ctx, claims.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fail(ReasonUnknownIdentity, nil)
	}
	if err != nil {
		return nil, fail(ReasonStoreUnavailable, err)
	}
	return user, nil
}

// AuthenticateHeader runs Authenticate on the token carried by an
// Authorization header value.
func (r *Resolver) AuthenticateHeader(ctx context.Context, header string) (*models.User, string, error) {
	token, ok := ExtractBearer(header)
	if !ok {
		return nil, "", fail(ReasonNoToken, nil)
	}
	user, err := r.Authenticate(ctx, token)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
