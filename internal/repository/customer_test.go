package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.BoxRequest{}))
	return db
}

func TestCustomerRepositoryGetByAccountNumber(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Customer{
		AccountNumber: "IM-10001",
		CustomerName:  "Yousef Al-Mansoori",
		Address:       "Dubai Marina, Dubai, UAE",
		BoxesRetained: 15,
	}).Error)

	customer, err := repo.GetByAccountNumber(ctx, "IM-10001")
	require.NoError(t, err)
	assert.Equal(t, "Yousef Al-Mansoori", customer.CustomerName)
	assert.Equal(t, 15, customer.BoxesRetained)

	_, err = repo.GetByAccountNumber(ctx, "IM-40404")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCustomerRepositoryGetInventory(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Customer{
		AccountNumber:  "IM-10003",
		CustomerName:   "Ahmed Hassan",
		Address:        "Business Bay, Dubai, UAE",
		BoxesRetained:  22,
		BoxesRequested: 4,
	}).Error)

	inv, err := repo.GetInventory(ctx, "IM-10003")
	require.NoError(t, err)
	assert.Equal(t, "IM-10003", inv.AccountNumber)
	assert.Equal(t, 22, inv.BoxesRetained)
	assert.Equal(t, 4, inv.BoxesRequested)

	_, err = repo.GetInventory(ctx, "IM-40404")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCustomerRepositoryCreateDuplicateAccount(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	first := models.Customer{AccountNumber: "IM-10005", CustomerName: "Mohammed Ali", Address: "Deira, Dubai, UAE"}
	require.NoError(t, repo.Create(ctx, &first))

	dup := models.Customer{AccountNumber: "IM-10005", CustomerName: "Someone Else", Address: "Elsewhere"}
	err := repo.Create(ctx, &dup)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestIsUniqueConstraintError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsUniqueConstraintError(nil))
	assert.False(t, IsUniqueConstraintError(errors.New("connection refused")))

	assert.True(t, IsUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueConstraintError(&pgconn.PgError{Code: "23503"}))

	// The sqlite driver only gives us a message.
	assert.True(t, IsUniqueConstraintError(errors.New("UNIQUE constraint failed: customers.account_number")))
	assert.True(t, IsUniqueConstraintError(errors.New(`duplicate key value violates unique constraint "idx_customers_account_number"`)))
}
