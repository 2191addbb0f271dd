// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Yahya-Naji/iron-knowledge/internal/cache"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// CustomerRepository defines persistence operations for customer accounts.
type CustomerRepository interface {
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Customer, error)
	GetInventory(ctx context.Context, accountNumber string) (*models.Inventory, error)
	Create(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, limit, offset int) ([]models.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository returns a new CustomerRepository implementation.
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Customer, error) {
	defer observability.TrackQuery("select", "customers")()

	var customer models.Customer
	key := cache.CustomerKey(accountNumber)

	err := cache.Aside(ctx, key, &customer, cache.CustomerTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("account_number = ?", accountNumber).
			First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Customer", accountNumber)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetInventory(ctx context.Context, accountNumber string) (*models.Inventory, error) {
	defer observability.TrackQuery("select", "customers")()

	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Select("account_number", "customer_name", "boxes_retained", "boxes_requested").
		Where("account_number = ?", accountNumber).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Customer", accountNumber)
		}
		return nil, models.NewInternalError(err)
	}
	inv := customer.Inventory()
	return &inv, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	defer observability.TrackQuery("insert", "customers")()

	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("Account number already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	defer observability.TrackQuery("select", "customers")()

	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Order("account_number ASC").
		Limit(limit).Offset(offset).
		Find(&customers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return customers, nil
}

// IsUniqueConstraintError checks if a DB error is a unique constraint violation.
// Postgres reports SQLSTATE 23505 through pgconn; the sqlite driver used in
// tests only exposes a message.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
