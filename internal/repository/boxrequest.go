package repository

import (
	"context"
	"errors"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/observability"

	"gorm.io/gorm"
)

// BoxRequestRepository defines read operations for the request ledger.
// All mutations go through the service layer's transactions, never here.
type BoxRequestRepository interface {
	GetPendingByToken(ctx context.Context, token string) (*models.BoxRequest, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]models.BoxRequest, error)
	ListByStatus(ctx context.Context, status models.BoxRequestStatus, limit, offset int) ([]models.BoxRequest, error)
}

type boxRequestRepository struct {
	db *gorm.DB
}

// NewBoxRequestRepository returns a new BoxRequestRepository implementation.
func NewBoxRequestRepository(db *gorm.DB) BoxRequestRepository {
	return &boxRequestRepository{db: db}
}

// GetPendingByToken loads a pending ledger entry by its cancellation token,
// joined with the owning customer for display. A token that is unknown or
// already redeemed is reported identically as NotFound so callers cannot
// probe which case occurred.
func (r *boxRequestRepository) GetPendingByToken(ctx context.Context, token string) (*models.BoxRequest, error) {
	defer observability.TrackQuery("select", "box_requests")()

	var request models.BoxRequest
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("cancellation_token = ? AND status = ? AND cancelled_at IS NULL", token, models.BoxRequestStatusPending).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Box request", "token")
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *boxRequestRepository) ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]models.BoxRequest, error) {
	defer observability.TrackQuery("select", "box_requests")()

	var requests []models.BoxRequest
	if err := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *boxRequestRepository) ListByStatus(ctx context.Context, status models.BoxRequestStatus, limit, offset int) ([]models.BoxRequest, error) {
	defer observability.TrackQuery("select", "box_requests")()

	var requests []models.BoxRequest
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}
