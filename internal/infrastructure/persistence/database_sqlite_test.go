package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/shoptag/backend/internal/infrastructure/config"
	"github.com/shoptag/backend/internal/infrastructure/persistence/models"
)

func openSQLiteDatabase(t *testing.T) *Database {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:          "sqlite",
		SQLitePath:      filepath.Join(t.TempDir(), "shoptag.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 1,
		ConnMaxIdleTime: 1,
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteDatabase(t *testing.T) {
	t.Run("creates schema on a fresh database file", func(t *testing.T) {
		db := openSQLiteDatabase(t)

		migrator := db.DB.Migrator()
		assert.True(t, migrator.HasTable(&models.TagAuditModel{}))
		assert.True(t, migrator.HasIndex(&models.TagAuditModel{}, "idx_tag_audit_product_created"))
	})

	t.Run("audit writes and reads work without a migration run", func(t *testing.T) {
		db := openSQLiteDatabase(t)
		repo := NewGormTagAuditRepository(db.DB)
		ctx := context.Background()

		record, err := audit.NewTagAudit("gid://shopify/Product/1",
			audit.TagActionAdded, "Sale", audit.TagStatusSuccess, "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, record))

		records, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "gid://shopify/Product/1", records[0].ProductID)
		assert.Equal(t, audit.TagActionAdded, records[0].Action)
	})
}
