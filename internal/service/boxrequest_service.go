// Package service implements the box-request lifecycle: issuing requests
// and redeeming single-use cancellation tokens.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/cache"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/observability"
	"github.com/Yahya-Naji/iron-knowledge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// opTimeout bounds every storage transaction so no caller blocks
// indefinitely on a wedged database.
const opTimeout = 5 * time.Second

// tokenAttempts bounds regeneration retries when a freshly generated token
// collides with an existing ledger entry.
const tokenAttempts = 3

// errTokenCollision signals that the ledger insert lost to the unique index
// on cancellation_token and the transaction should be retried with a new token.
var errTokenCollision = errors.New("cancellation token collision")

// BoxRequestService owns all mutations of the customers/box_requests pair.
// Both writes of each operation run in a single transaction so the invariant
// "boxes_requested equals the sum of pending quantities" never observably
// breaks, even under concurrent issuance or double-clicked cancellation links.
type BoxRequestService struct {
	db          *gorm.DB
	requestRepo repository.BoxRequestRepository
}

// IssueInput is the request to create a new box request.
type IssueInput struct {
	AccountNumber string
	Quantity      int
}

// IssueResult carries the new ledger entry and the post-issue account state.
type IssueResult struct {
	Request           models.BoxRequest
	Customer          models.Customer
	CancellationToken string
}

// CancelResult carries the redeemed ledger entry for display.
type CancelResult struct {
	Request     models.BoxRequest
	CancelledAt time.Time
}

// NewBoxRequestService returns a service bound to the given database handle.
func NewBoxRequestService(db *gorm.DB) *BoxRequestService {
	return &BoxRequestService{
		db:          db,
		requestRepo: repository.NewBoxRequestRepository(db),
	}
}

// Issue atomically increments the customer's boxes_requested counter, stamps
// the last-request timestamp and appends a pending ledger entry carrying a
// fresh cancellation token. Either both writes persist or neither does.
// Emailing the token is the caller's concern, after this returns.
func (s *BoxRequestService) Issue(ctx context.Context, in IssueInput) (*IssueResult, error) {
	if in.Quantity <= 0 {
		return nil, models.NewValidationError("Quantity must be a positive number of boxes")
	}
	if in.AccountNumber == "" {
		return nil, models.NewValidationError("Account number is required")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ctx, span := observability.Tracer.Start(ctx, "BoxRequestService.Issue")
	defer span.End()
	span.SetAttributes(
		attribute.String("account_number", in.AccountNumber),
		attribute.Int("quantity", in.Quantity),
	)

	var result *IssueResult
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err := NewCancellationToken()
		if err != nil {
			return nil, models.NewInternalError(err)
		}

		result, err = s.issueOnce(ctx, in, token)
		if errors.Is(err, errTokenCollision) {
			continue
		}
		if err != nil {
			return nil, err
		}

		cache.InvalidateCustomer(ctx, in.AccountNumber)
		observability.BoxRequestsIssued.Inc()
		return result, nil
	}

	return nil, models.NewInternalError(errTokenCollision)
}

func (s *BoxRequestService) issueOnce(ctx context.Context, in IssueInput, token string) (*IssueResult, error) {
	now := time.Now().UTC()
	var request models.BoxRequest
	var customer models.Customer

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Customer{}).
			Where("account_number = ?", in.AccountNumber).
			Updates(map[string]any{
				"boxes_requested":   gorm.Expr("boxes_requested + ?", in.Quantity),
				"last_request_date": now,
			})
		if res.Error != nil {
			return classifyStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Customer", in.AccountNumber)
		}

		request = models.BoxRequest{
			AccountNumber:     in.AccountNumber,
			Quantity:          in.Quantity,
			CancellationToken: token,
			Status:            models.BoxRequestStatusPending,
		}
		if err := tx.Create(&request).Error; err != nil {
			if repository.IsUniqueConstraintError(err) {
				return errTokenCollision
			}
			return classifyStorageError(err)
		}

		if err := tx.Where("account_number = ?", in.AccountNumber).First(&customer).Error; err != nil {
			return classifyStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &IssueResult{
		Request:           request,
		Customer:          customer,
		CancellationToken: token,
	}, nil
}

// Cancel redeems a cancellation token exactly once. The status flip is an
// atomic conditional update; whichever concurrent attempt matches the
// pending row wins, every other attempt sees zero affected rows and gets
// NotFound. Unknown and already-redeemed tokens are indistinguishable to the
// caller so the endpoint cannot be used as a replay oracle.
func (s *BoxRequestService) Cancel(ctx context.Context, token string) (*CancelResult, error) {
	if token == "" {
		return nil, models.NewValidationError("Cancellation token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ctx, span := observability.Tracer.Start(ctx, "BoxRequestService.Cancel")
	defer span.End()

	now := time.Now().UTC()
	var request models.BoxRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BoxRequest{}).
			Where("cancellation_token = ? AND status = ?", token, models.BoxRequestStatusPending).
			Updates(map[string]any{
				"status":       models.BoxRequestStatusCancelled,
				"cancelled_at": now,
			})
		if res.Error != nil {
			return classifyStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Box request", "token")
		}

		if err := tx.Where("cancellation_token = ?", token).First(&request).Error; err != nil {
			return classifyStorageError(err)
		}

		// Floor at zero to tolerate external data drift; under correct
		// sequential use the invariant guarantees a non-negative result.
		if err := tx.Model(&models.Customer{}).
			Where("account_number = ?", request.AccountNumber).
			Update("boxes_requested",
				gorm.Expr("CASE WHEN boxes_requested >= ? THEN boxes_requested - ? ELSE 0 END",
					request.Quantity, request.Quantity)).Error; err != nil {
			return classifyStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateCustomer(ctx, request.AccountNumber)
	observability.BoxRequestsCancelled.Inc()

	return &CancelResult{
		Request:     request,
		CancelledAt: now,
	}, nil
}

// PendingRequest loads a pending ledger entry (with its customer) for the
// cancellation confirmation page. Read-only, no side effects.
func (s *BoxRequestService) PendingRequest(ctx context.Context, token string) (*models.BoxRequest, error) {
	if token == "" {
		return nil, models.NewValidationError("Cancellation token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.requestRepo.GetPendingByToken(ctx, token)
}

// ListByStatus exposes the ledger to the staff API.
func (s *BoxRequestService) ListByStatus(ctx context.Context, status models.BoxRequestStatus, limit, offset int) ([]models.BoxRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.requestRepo.ListByStatus(ctx, status, limit, offset)
}

// classifyStorageError maps raw storage failures onto the service taxonomy.
// Deadline and cancellation failures are retryable by the caller; everything
// else without a taxonomy is internal.
func classifyStorageError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewTransientError("Storage temporarily unavailable, please retry", err)
	}
	return models.NewInternalError(err)
}
