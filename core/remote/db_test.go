package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldsync/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteBackend(t *testing.T, now func() time.Time) *DBBackend {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	b, err := NewDBBackend(db, now)
	require.NoError(t, err)
	require.NoError(t, b.Migrate(context.Background()))
	return b
}

func setupMockBackend(t *testing.T) (*DBBackend, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	b, err := NewDBBackend(db, nil)
	require.NoError(t, err)
	return b, mock
}

func TestDBBackend_PatchPreservesOtherColumns(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	now := t0
	b := newSQLiteBackend(t, func() time.Time { return now })

	_, err := b.Patch(ctx, CollectionWorkOrders, "W1", map[string]any{"status": "open", "priority": "high", "title": "Pump"})
	require.NoError(t, err)

	now = t0.Add(time.Hour)
	rec, err := b.Patch(ctx, CollectionWorkOrders, "W1", map[string]any{"status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, "W1", rec.ID)
	assert.Equal(t, "completed", rec.Fields["status"])
	assert.Equal(t, "high", rec.Fields["priority"])
	assert.Equal(t, "Pump", rec.Fields["title"])
	assert.True(t, rec.UpdatedAt.Equal(now), "updated_at %v", rec.UpdatedAt)

	got, err := b.Get(ctx, CollectionWorkOrders, "W1")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestDBBackend_Insert(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBackend(t, nil)

	rec, err := b.Insert(ctx, CollectionHazardReports, map[string]any{
		"description": "exposed wiring",
		"severity":    "high",
		"reported_by": "tech-7",
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	got, err := b.Get(ctx, CollectionHazardReports, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "tech-7", got.Fields["reported_by"])

	_, err = b.Insert(ctx, CollectionHazardReports, map[string]any{"id": rec.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDBBackend_Validation(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBackend(t, nil)

	_, err := b.Patch(ctx, CollectionWorkOrders, "W1", map[string]any{"colour": "red"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = b.Insert(ctx, "invoices", map[string]any{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = b.Get(ctx, CollectionWorkOrders, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := b.Insert(ctx, CollectionInspections, map[string]any{"checklist": map[string]any{"valves": true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"valves":true}`, rec.Fields["checklist"].(string))
}

func TestDBBackend_MySQL(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		b, mock := setupMockBackend(t)
		mock.ExpectQuery("SELECT \\* FROM `work_orders` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status", "updated_at"}))

		_, err := b.Get(ctx, CollectionWorkOrders, "W1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connection error", func(t *testing.T) {
		b, mock := setupMockBackend(t)
		mock.ExpectQuery("SELECT \\* FROM `work_orders`").
			WillReturnError(errors.New("connection reset by peer"))

		_, err := b.Get(ctx, CollectionWorkOrders, "W1")
		assert.ErrorIs(t, err, ErrTransport)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert", func(t *testing.T) {
		b, mock := setupMockBackend(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `inspections`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rec, err := b.Insert(ctx, CollectionInspections, map[string]any{"id": "I-1", "result": "pass"})
		require.NoError(t, err)
		assert.Equal(t, "I-1", rec.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
