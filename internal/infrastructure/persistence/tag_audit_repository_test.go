package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockTagAuditRepository creates a GormTagAuditRepository with a mocked SQL connection
func newMockTagAuditRepository(t *testing.T) (*GormTagAuditRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormTagAuditRepository(gormDB), mock, mockDB
}

func TestGormTagAuditRepository_Save(t *testing.T) {
	t.Run("inserts audit record", func(t *testing.T) {
		repo, mock, mockDB := newMockTagAuditRepository(t)
		defer mockDB.Close()

		record, err := audit.NewTagAudit("gid://shopify/Product/1", audit.TagActionAdded, "Sale", audit.TagStatusSuccess, "")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "product_tag_audits"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Save(context.Background(), record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database error", func(t *testing.T) {
		repo, mock, mockDB := newMockTagAuditRepository(t)
		defer mockDB.Close()

		record, err := audit.NewTagAudit("gid://shopify/Product/1", audit.TagActionFailed, "Sale", audit.TagStatusError, "boom")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "product_tag_audits"`).
			WillReturnError(sql.ErrConnDone)

		err = repo.Save(context.Background(), record)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTagAuditRepository_ListRecent(t *testing.T) {
	t.Run("returns records newest first", func(t *testing.T) {
		repo, mock, mockDB := newMockTagAuditRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "product_id", "action", "tag", "status", "error_message"}).
			AddRow(uuid.New(), now, now, "gid://shopify/Product/2", "skipped", "Sale", "success", nil).
			AddRow(uuid.New(), now.Add(-time.Minute), now.Add(-time.Minute), "gid://shopify/Product/1", "added", "Sale", "success", nil)

		mock.ExpectQuery(`SELECT \* FROM "product_tag_audits" ORDER BY created_at DESC LIMIT .*`).
			WillReturnRows(rows)

		records, err := repo.ListRecent(context.Background(), 100)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "gid://shopify/Product/2", records[0].ProductID)
		assert.Equal(t, audit.TagActionSkipped, records[0].Action)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when no records", func(t *testing.T) {
		repo, mock, mockDB := newMockTagAuditRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "product_id", "action", "tag", "status", "error_message"})

		mock.ExpectQuery(`SELECT \* FROM "product_tag_audits" ORDER BY created_at DESC LIMIT .*`).
			WillReturnRows(rows)

		records, err := repo.ListRecent(context.Background(), 100)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTagAuditRepository_ListByProduct(t *testing.T) {
	t.Run("filters by product ID", func(t *testing.T) {
		repo, mock, mockDB := newMockTagAuditRepository(t)
		defer mockDB.Close()

		now := time.Now()
		errMsg := "max retries exceeded"
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "product_id", "action", "tag", "status", "error_message"}).
			AddRow(uuid.New(), now, now, "gid://shopify/Product/1", "failed", "Sale", "error", &errMsg)

		mock.ExpectQuery(`SELECT \* FROM "product_tag_audits" WHERE product_id = \$1 ORDER BY created_at DESC`).
			WithArgs("gid://shopify/Product/1").
			WillReturnRows(rows)

		records, err := repo.ListByProduct(context.Background(), "gid://shopify/Product/1")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].IsError())
		require.NotNil(t, records[0].ErrorMessage)
		assert.Equal(t, "max retries exceeded", *records[0].ErrorMessage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
