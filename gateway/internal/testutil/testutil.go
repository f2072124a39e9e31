// Package testutil builds the in-memory backends shared by gateway tests.
package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	pkgdb "github.com/Skotchmaster/doc_platform/pkg/db"
)

// NewRepo returns a migrated and seeded repository over a private in-memory
// SQLite database.
func NewRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), pkgdb.GormConfig())
	require.NoError(t, err)

	// every pooled connection to ":memory:" would be a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	require.NoError(t, r.Seed(context.Background()))
	return r
}

// NewRedis returns a client bound to a fresh miniredis instance.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}
