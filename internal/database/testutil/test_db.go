// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/database"
)

type schemaStage int

const (
	stageEmpty schemaStage = iota
	stageMigrated
	stageSeeded
)

// TestDBOption selects how far the schema is prepared.
type TestDBOption func(*schemaStage)

// WithAutoMigrate creates every table without seeding rows.
func WithAutoMigrate() TestDBOption {
	return func(stage *schemaStage) {
		if *stage < stageMigrated {
			*stage = stageMigrated
		}
	}
}

// WithSeedData migrates and inserts the permission catalog and the root categories.
func WithSeedData() TestDBOption {
	return func(stage *schemaStage) { *stage = stageSeeded }
}

// MustOpenTestDB returns an isolated in-memory SQLite database closed on test
// cleanup. It holds one connection, so concurrent writers queue behind each
// other the way row locks would make them.
func MustOpenTestDB(t testing.TB, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	stage := stageEmpty
	for _, opt := range opts {
		opt(&stage)
	}

	db, err := database.Open(database.Config{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		MaxOpenConns: 1,
	})
	require.NoError(t, err, "open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	switch stage {
	case stageSeeded:
		require.NoError(t, database.AutoMigrateAndSeed(db), "migrate and seed")
	case stageMigrated:
		require.NoError(t, database.AutoMigrate(db), "migrate")
	}
	return db
}
