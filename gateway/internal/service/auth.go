package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Skotchmaster/doc_platform/gateway/internal/metrics"
	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/gateway/internal/revocation"
	"github.com/Skotchmaster/doc_platform/pkg/events"
	pkghash "github.com/Skotchmaster/doc_platform/pkg/hash"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
	"github.com/Skotchmaster/doc_platform/pkg/tokens"
)

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindRole(ctx context.Context, id uint) (*models.Role, error)
	CreateUser(ctx context.Context, u *models.User) error
}

type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttlSeconds int) error
}

type AuthService struct {
	Users       UserStore
	Revocations TokenRevoker
	Events      events.Publisher
	Metrics     *metrics.Metrics

	Secret []byte
	// Expiry is the configured token lifetime, e.g. "2h".
	Expiry string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    uint
}

type RegisterResult struct {
	User  *models.User
	Token string
}

func (s *AuthService) issue(u *models.User) (string, error) {
	return tokens.Issue(tokens.Claims{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, s.Secret, revocation.ParseExpiryDuration(s.Expiry))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if len(s.Secret) == 0 {
		l.Error("register_error", "status", 500, "reason", "jwt secret is not configured")
		return nil, tokens.ErrMissingSecret
	}

	if len(in.Password) > pkghash.MaxPasswordBytes {
		l.Warn("register_error", "status", 400, "reason", "password too long")
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, pkghash.MaxPasswordBytes)
	}

	_, err := s.Users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		l.Warn("register_error", "status", 400, "reason", "user already exists")
		return nil, ErrUserExists
	case !errors.Is(err, repo.ErrNotFound):
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if _, err := s.Users.FindRole(ctx, in.RoleID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("register_error", "status", 400, "reason", "unknown role", "role_id", in.RoleID)
			return nil, fmt.Errorf("%w: unknown role %d", ErrValidation, in.RoleID)
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	pwHash, err := pkghash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: pwHash,
		RoleID:       in.RoleID,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("register_error", "status", 400, "reason", "user already exists")
			return nil, ErrUserExists
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issue(user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	s.emit(ctx, user.ID, "user_registered")
	l.Info("register_successful", "user_id", user.ID)
	return &RegisterResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 400, "reason", "unknown email")
		} else {
			l.Error("login_failed", "status", 400, "error", err)
		}
		return "", ErrLoginFailed
	}

	if !pkghash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 400, "reason", "incorrect password", "user_id", user.ID)
		return "", ErrIncorrectPassword
	}

	token, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return "", err
	}

	s.emit(ctx, user.ID, "user_logged_in")
	l.Info("login_successful", "user_id", user.ID)
	return token, nil
}

// Logout revokes token for the rest of its natural lifetime. Tokens that no
// longer verify are revoked for the configured expiry instead.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	ttl := revocation.ParseExpiry(s.Expiry)
	var userID uint
	if claims, err := tokens.Verify(token, s.Secret); err == nil {
		userID = claims.ID
		if left := tokens.Remaining(claims, time.Now()); left > 0 {
			ttl = int(math.Ceil(left.Seconds()))
		}
	}

	if err := s.Revocations.Revoke(ctx, token, ttl); err != nil {
		s.Metrics.ObserveRevocation("failed")
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return fmt.Errorf("%w: %v", ErrLogoutFailed, err)
	}

	s.Metrics.ObserveRevocation("ok")
	if userID != 0 {
		s.emit(ctx, userID, "user_logged_out")
	}
	l.Info("successful_logout", "user_id", userID, "ttl_seconds", ttl)
	return nil
}

func (s *AuthService) emit(ctx context.Context, userID uint, typ string) {
	if s.Events == nil {
		return
	}
	ev := events.NewEvent(typ, map[string]any{"userId": userID})
	pctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	if err := s.Events.PublishEvent(pctx, events.TopicUsers, fmt.Sprint(userID), ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", typ, "error", err)
	}
}
