package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_platform/gateway/internal/ability"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authz"
	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/gateway/internal/revocation"
	"github.com/Skotchmaster/doc_platform/gateway/internal/testutil"
	"github.com/Skotchmaster/doc_platform/pkg/events"
	"github.com/Skotchmaster/doc_platform/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

type authEnv struct {
	repo   *repo.GormRepo
	store  *revocation.Store
	mr     *miniredis.Miniredis
	events *fakePublisher
	svc    *AuthService
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	r := testutil.NewRepo(t)
	rdb, mr := testutil.NewRedis(t)
	store := revocation.NewStore(rdb)
	pub := &fakePublisher{}
	return &authEnv{
		repo:   r,
		store:  store,
		mr:     mr,
		events: pub,
		svc: &AuthService{
			Users:       r,
			Revocations: store,
			Events:      pub,
			Secret:      testSecret,
			Expiry:      "2h",
		},
	}
}

func viewerInput(email string) RegisterInput {
	return RegisterInput{Email: email, Password: "pa55word", FirstName: "Vera", LastName: "Viewer", RoleID: repo.RoleViewer}
}

func countUsers(t *testing.T, r *repo.GormRepo) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestRegister_CreatesUserAndToken(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	res, err := env.svc.Register(context.Background(), viewerInput("Vera@Example.com"))
	require.NoError(t, err)

	assert.Equal(t, "vera@example.com", res.User.Email)
	assert.NotEqual(t, "pa55word", res.User.PasswordHash)

	claims, err := tokens.Verify(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.ID)
	assert.Equal(t, "vera@example.com", claims.Email)
	assert.Equal(t, "Vera", claims.FirstName)
	assert.Equal(t, "Viewer", claims.LastName)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	assert.Equal(t, []string{"user_registered"}, env.events.types())
	assert.Equal(t, events.TopicUsers, env.events.events[0].topic)
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	_, err := env.svc.Register(ctx, viewerInput("dup@example.com"))
	require.NoError(t, err)
	before := countUsers(t, env.repo)

	res, err := env.svc.Register(ctx, viewerInput("DUP@Example.COM"))
	require.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, "User already exists", err.Error())
	assert.Nil(t, res)
	assert.Equal(t, before, countUsers(t, env.repo))
}

func TestRegister_MissingSecret(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.svc.Secret = nil
	before := countUsers(t, env.repo)

	_, err := env.svc.Register(context.Background(), viewerInput("nosecret@example.com"))
	require.ErrorIs(t, err, tokens.ErrMissingSecret)
	assert.Equal(t, before, countUsers(t, env.repo))
}

func TestRegister_UnknownRole(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	in := viewerInput("norole@example.com")
	in.RoleID = 77

	_, err := env.svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestRegister_PasswordLimitCountsBytes(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	before := countUsers(t, env.repo)

	in := viewerInput("long@example.com")
	in.Password = strings.Repeat("é", 40)
	res, err := env.svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, res)
	assert.Equal(t, before, countUsers(t, env.repo))
}

// racingUsers misses the existence check and then loses the insert to a
// concurrent registration of the same email.
type racingUsers struct {
	created int
}

func (racingUsers) FindUserByEmail(context.Context, string) (*models.User, error) {
	return nil, repo.ErrNotFound
}

func (racingUsers) FindRole(_ context.Context, id uint) (*models.Role, error) {
	return &models.Role{ID: id, Name: "Viewer"}, nil
}

func (r *racingUsers) CreateUser(context.Context, *models.User) error {
	r.created++
	return repo.ErrAlreadyExists
}

func TestRegister_InsertRaceReportsUserExists(t *testing.T) {
	t.Parallel()

	users := &racingUsers{}
	pub := &fakePublisher{}
	svc := &AuthService{Users: users, Events: pub, Secret: testSecret, Expiry: "2h"}

	res, err := svc.Register(context.Background(), viewerInput("race@example.com"))
	require.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, "User already exists", err.Error())
	assert.Nil(t, res)
	assert.Equal(t, 1, users.created)
	assert.Empty(t, pub.types())
}

func TestLogin_Messages(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	_, err := env.svc.Register(ctx, viewerInput("login@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
		wantMsg  string
	}{
		{name: "unknown email", email: "ghost@example.com", password: "pa55word", wantErr: ErrLoginFailed, wantMsg: "Login failed"},
		{name: "wrong password", email: "login@example.com", password: "nope", wantErr: ErrIncorrectPassword, wantMsg: "Incorrect password"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			token, err := env.svc.Login(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Empty(t, token)
		})
	}

	token, err := env.svc.Login(ctx, "LOGIN@example.com", "pa55word")
	require.NoError(t, err)
	claims, err := tokens.Verify(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", claims.Email)
}

func TestLogout_RevokesForRemainingLifetime(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	res, err := env.svc.Register(ctx, viewerInput("out@example.com"))
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, res.Token))

	revoked, err := env.store.IsRevoked(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := env.mr.TTL(revocation.Key(res.Token))
	assert.InDelta(t, (2 * time.Hour).Seconds(), ttl.Seconds(), 5)
	assert.Contains(t, env.events.types(), "user_logged_out")
}

func TestLogout_UnverifiableTokenUsesConfiguredExpiry(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.svc.Expiry = "30m"

	require.NoError(t, env.svc.Logout(context.Background(), "not-a-jwt"))
	assert.Equal(t, 30*time.Minute, env.mr.TTL(revocation.Key("not-a-jwt")))
}

type failingRevoker struct{}

func (failingRevoker) Revoke(context.Context, string, int) error {
	return errors.New("redis: connection refused")
}

func TestLogout_StoreFailure(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.svc.Revocations = failingRevoker{}

	err := env.svc.Logout(context.Background(), "tok")
	require.ErrorIs(t, err, ErrLogoutFailed)
}

func TestEventFailuresDoNotFailRequests(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.events.err = errors.New("broker down")

	_, err := env.svc.Register(context.Background(), viewerInput("events@example.com"))
	require.NoError(t, err)
}

// A viewer can read but not write documents, and a logged out token stops
// resolving.
func TestViewerSessionLifecycle(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	resolver := &authn.Resolver{Revocations: env.store, Identities: env.repo, Secret: testSecret}
	gate := &authz.Gate{Abilities: &ability.Builder{Store: env.repo}}

	_, err := env.svc.Register(ctx, viewerInput("viewer@example.com"))
	require.NoError(t, err)
	token, err := env.svc.Login(ctx, "viewer@example.com", "pa55word")
	require.NoError(t, err)

	user, err := resolver.Authenticate(ctx, token)
	require.NoError(t, err)
	reqCtx := authn.WithIdentity(ctx, user, token)

	canWrite, err := gate.AuthorizeRequest(reqCtx, []authz.Requirement{authz.Can(models.ActionWrite, ability.ResourceDocument)})
	require.NoError(t, err)
	assert.False(t, canWrite)

	canRead, err := gate.AuthorizeRequest(reqCtx, []authz.Requirement{authz.Can(models.ActionRead, ability.ResourceDocument)})
	require.NoError(t, err)
	assert.True(t, canRead)

	require.NoError(t, env.svc.Logout(ctx, token))

	_, err = resolver.Authenticate(ctx, token)
	var ae *authn.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, authn.ReasonRevoked, ae.Reason)
}
