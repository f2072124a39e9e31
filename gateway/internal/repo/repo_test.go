package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/gateway/internal/testutil"
)

func TestSeed_IsIdempotent(t *testing.T) {
	t.Parallel()

	r := testutil.NewRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Seed(ctx))

	var roles, perms, grants, users int64
	require.NoError(t, r.DB.Model(&models.Role{}).Count(&roles).Error)
	require.NoError(t, r.DB.Model(&models.Permission{}).Count(&perms).Error)
	require.NoError(t, r.DB.Model(&models.RolePermission{}).Count(&grants).Error)
	require.NoError(t, r.DB.Model(&models.User{}).Count(&users).Error)

	assert.EqualValues(t, 3, roles)
	assert.EqualValues(t, 3, perms)
	assert.EqualValues(t, 8+3+4+2+1+1, grants)
	assert.EqualValues(t, 1, users)
}

func TestLoadUserWithGrants(t *testing.T) {
	t.Parallel()

	r := testutil.NewRepo(t)
	ctx := context.Background()

	u := &models.User{FirstName: "V", LastName: "W", Email: "v@example.com", PasswordHash: "x", RoleID: repo.RoleViewer}
	require.NoError(t, r.CreateUser(ctx, u))

	got, err := r.LoadUserWithGrants(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Role)
	assert.Equal(t, "Viewer", got.Role.Name)
	require.Len(t, got.Role.Grants, 2)
	for _, g := range got.Role.Grants {
		require.NotNil(t, g.Permission)
		assert.Equal(t, models.ActionRead, g.AccessType)
	}

	_, err = r.LoadUserWithGrants(ctx, 9999)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCreateUser_DuplicateEmailIgnoresCase(t *testing.T) {
	t.Parallel()

	r := testutil.NewRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUser(ctx, &models.User{FirstName: "X", LastName: "Y", Email: "x@y.com", PasswordHash: "x", RoleID: repo.RoleViewer}))
	err := r.CreateUser(ctx, &models.User{FirstName: "X", LastName: "Y", Email: "X@Y.com", PasswordHash: "x", RoleID: repo.RoleViewer})
	require.ErrorIs(t, err, repo.ErrAlreadyExists)

	var n int64
	require.NoError(t, r.DB.Model(&models.User{}).Where("email = ?", "x@y.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	r := testutil.NewRepo(t)
	ctx := context.Background()

	u := &models.User{FirstName: "Ann", LastName: "Lee", Email: "Ann@Example.com", PasswordHash: "x", RoleID: repo.RoleEditor}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ann@example.com", u.Email)

	byEmail, err := r.FindUserByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.FirstName)

	_, err = r.FindUserByID(ctx, 9999)
	require.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.FindUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, repo.ErrNotFound)

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, repo.SuperAdminEmail, users[0].Email)
	require.NotNil(t, users[1].Role)
	assert.Equal(t, "Editor", users[1].Role.Name)
}

func TestDocuments(t *testing.T) {
	t.Parallel()

	r := testutil.NewRepo(t)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, r.CreateDocument(ctx, &models.Document{OriginalName: name, Name: "stored-" + name, MimeType: "application/pdf", Size: 10}))
	}

	total, docs, err := r.ListDocuments(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, docs, 2)
	assert.Equal(t, "b.pdf", docs[0].OriginalName)

	doc := docs[0]
	doc.OriginalName = "renamed.pdf"
	require.NoError(t, r.UpdateDocument(ctx, &doc))

	got, err := r.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.OriginalName)

	require.NoError(t, r.DeleteDocument(ctx, doc.ID))
	require.ErrorIs(t, r.DeleteDocument(ctx, doc.ID), repo.ErrNotFound)
	_, err = r.GetDocument(ctx, doc.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.ErrorIs(t, r.UpdateDocument(ctx, &models.Document{ID: 999, Name: "x"}), repo.ErrNotFound)
}
