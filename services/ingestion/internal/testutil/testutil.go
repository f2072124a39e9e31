// Package testutil builds the in-memory backends shared by ingestion tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/doc_platform/pkg/db"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/repo"
)

func NewRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), pkgdb.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}
