package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection serializes concurrent transactions the way row
	// locks would on Postgres.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Customer{}, &models.BoxRequest{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func createTestCustomer(t *testing.T, db *gorm.DB, accountNumber string, retained int) models.Customer {
	t.Helper()
	customer := models.Customer{
		AccountNumber: accountNumber,
		CustomerName:  "Yousef Al-Mansoori",
		CompanyName:   "Tech Innovations LLC",
		Address:       "Dubai Marina, Dubai, UAE",
		Email:         "yousef@techinnovations.ae",
		BoxesRetained: retained,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func TestIssueCreatesPendingRequestAndIncrementsCounter(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10001", 15)
	svc := NewBoxRequestService(db)

	before := time.Now().UTC().Add(-time.Second)
	result, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10001", Quantity: 5})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Request.Quantity)
	assert.Equal(t, models.BoxRequestStatusPending, result.Request.Status)
	assert.NotEmpty(t, result.CancellationToken)
	assert.Equal(t, result.CancellationToken, result.Request.CancellationToken)

	assert.Equal(t, 5, result.Customer.BoxesRequested)
	assert.Equal(t, 15, result.Customer.BoxesRetained)
	require.NotNil(t, result.Customer.LastRequestDate)
	assert.True(t, result.Customer.LastRequestDate.After(before))

	var stored models.BoxRequest
	require.NoError(t, db.Where("cancellation_token = ?", result.CancellationToken).First(&stored).Error)
	assert.Equal(t, "IM-10001", stored.AccountNumber)
	assert.Nil(t, stored.CancelledAt)
}

func TestIssueAccumulatesAcrossRequests(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10003", 22)
	svc := NewBoxRequestService(db)

	first, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10003", Quantity: 3})
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10003", Quantity: 4})
	require.NoError(t, err)

	assert.NotEqual(t, first.CancellationToken, second.CancellationToken)
	assert.Equal(t, 7, second.Customer.BoxesRequested)

	var count int64
	require.NoError(t, db.Model(&models.BoxRequest{}).
		Where("account_number = ?", "IM-10003").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestIssueUnknownAccount(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc := NewBoxRequestService(db)

	_, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-99999", Quantity: 2})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	// Nothing may persist when the account lookup fails.
	var count int64
	require.NoError(t, db.Model(&models.BoxRequest{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIssueRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10002", 8)
	svc := NewBoxRequestService(db)

	for _, quantity := range []int{0, -1, -100} {
		_, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10002", Quantity: quantity})
		require.Error(t, err, "quantity %d", quantity)
		assert.True(t, models.IsCode(err, models.CodeValidation))
	}

	var customer models.Customer
	require.NoError(t, db.Where("account_number = ?", "IM-10002").First(&customer).Error)
	assert.Zero(t, customer.BoxesRequested)
	assert.Nil(t, customer.LastRequestDate)
}

func TestCancelRedeemsTokenAndDecrementsCounter(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10004", 12)
	svc := NewBoxRequestService(db)

	issued, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10004", Quantity: 6})
	require.NoError(t, err)

	result, err := svc.Cancel(context.Background(), issued.CancellationToken)
	require.NoError(t, err)
	assert.Equal(t, models.BoxRequestStatusCancelled, result.Request.Status)
	require.NotNil(t, result.Request.CancelledAt)

	var customer models.Customer
	require.NoError(t, db.Where("account_number = ?", "IM-10004").First(&customer).Error)
	assert.Zero(t, customer.BoxesRequested)

	// The ledger entry survives as an audit record.
	var stored models.BoxRequest
	require.NoError(t, db.Where("cancellation_token = ?", issued.CancellationToken).First(&stored).Error)
	assert.Equal(t, models.BoxRequestStatusCancelled, stored.Status)
}

func TestCancelOnlyAffectsItsOwnRequest(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10005", 30)
	svc := NewBoxRequestService(db)

	first, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10005", Quantity: 2})
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10005", Quantity: 3})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), first.CancellationToken)
	require.NoError(t, err)

	var customer models.Customer
	require.NoError(t, db.Where("account_number = ?", "IM-10005").First(&customer).Error)
	assert.Equal(t, 3, customer.BoxesRequested)

	var stillPending models.BoxRequest
	require.NoError(t, db.Where("cancellation_token = ?", second.CancellationToken).First(&stillPending).Error)
	assert.Equal(t, models.BoxRequestStatusPending, stillPending.Status)
}

func TestCancelUnknownToken(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc := NewBoxRequestService(db)

	_, err := svc.Cancel(context.Background(), "not-a-real-token")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCancelTwiceSecondAttemptFails(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10001", 15)
	svc := NewBoxRequestService(db)

	issued, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10001", Quantity: 4})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), issued.CancellationToken)
	require.NoError(t, err)

	// A replay must look exactly like an unknown token and must not touch
	// the counter again.
	_, err = svc.Cancel(context.Background(), issued.CancellationToken)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var customer models.Customer
	require.NoError(t, db.Where("account_number = ?", "IM-10001").First(&customer).Error)
	assert.Zero(t, customer.BoxesRequested)
}

func TestCancelConcurrentExactlyOneWins(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10002", 8)
	svc := NewBoxRequestService(db)

	issued, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10002", Quantity: 5})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Cancel(context.Background(), issued.CancellationToken)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(t, models.IsCode(err, models.CodeNotFound))
		}
	}
	assert.Equal(t, 1, wins)

	var customer models.Customer
	require.NoError(t, db.Where("account_number = ?", "IM-10002").First(&customer).Error)
	assert.Zero(t, customer.BoxesRequested)
}

func TestCancelFloorsCounterAtZero(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10003", 22)
	svc := NewBoxRequestService(db)

	issued, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10003", Quantity: 10})
	require.NoError(t, err)

	// Simulate external drift pulling the counter below the pending total.
	require.NoError(t, db.Model(&models.Customer{}).
		Where("account_number = ?", "IM-10003").
		Update("boxes_requested", 4).Error)

	_, err = svc.Cancel(context.Background(), issued.CancellationToken)
	require.NoError(t, err)

	var customer models.Customer
	require.NoError(t, db.Where("account_number = ?", "IM-10003").First(&customer).Error)
	assert.Zero(t, customer.BoxesRequested)
}

func TestPendingRequestLoadsCustomer(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10004", 12)
	svc := NewBoxRequestService(db)

	issued, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10004", Quantity: 2})
	require.NoError(t, err)

	req, err := svc.PendingRequest(context.Background(), issued.CancellationToken)
	require.NoError(t, err)
	require.NotNil(t, req.Customer)
	assert.Equal(t, "Yousef Al-Mansoori", req.Customer.CustomerName)

	// After redemption the lookup must behave like an unknown token.
	_, err = svc.Cancel(context.Background(), issued.CancellationToken)
	require.NoError(t, err)
	_, err = svc.PendingRequest(context.Background(), issued.CancellationToken)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestListByStatus(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	createTestCustomer(t, db, "IM-10005", 30)
	svc := NewBoxRequestService(db)

	first, err := svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10005", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), IssueInput{AccountNumber: "IM-10005", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), first.CancellationToken)
	require.NoError(t, err)

	pending, err := svc.ListByStatus(context.Background(), models.BoxRequestStatusPending, 10, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	cancelled, err := svc.ListByStatus(context.Background(), models.BoxRequestStatusCancelled, 10, 0)
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)
}
