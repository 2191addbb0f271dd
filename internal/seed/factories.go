package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// Development and testing only.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
	// next generated account suffix; demo accounts own 10001-10005
	nextAccount int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:          db,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		nextAccount: 20001,
	}
}

// BuildCustomer constructs a customer with realistic fake data but does not
// persist it.
func (f *Factory) BuildCustomer(overrides ...func(*models.Customer)) *models.Customer {
	number := fmt.Sprintf("IM-%d", f.nextAccount)
	f.nextAccount++

	name := gofakeit.Name()
	customer := &models.Customer{
		AccountNumber: number,
		CustomerName:  name,
		CompanyName:   gofakeit.Company(),
		Address:       fmt.Sprintf("%s, %s", gofakeit.Street(), gofakeit.City()),
		PhoneNumber:   gofakeit.Phone(),
		Email: fmt.Sprintf("%s@%s",
			strings.ToLower(strings.ReplaceAll(name, " ", ".")),
			gofakeit.DomainName()),
		BoxesRetained: f.rand.Intn(40) + 1,
	}

	for _, override := range overrides {
		override(customer)
	}
	return customer
}

// CreateCustomers persists n generated customers.
func (f *Factory) CreateCustomers(n int) ([]models.Customer, error) {
	if n <= 0 {
		return nil, nil
	}
	customers := make([]models.Customer, 0, n)
	for i := 0; i < n; i++ {
		customers = append(customers, *f.BuildCustomer())
	}
	if err := f.db.CreateInBatches(customers, 100).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateHistoricalRequests spreads n past box requests across the given
// customers. Roughly a third are cancelled so both lifecycle states show up
// in staff views. Counters are kept consistent with the ledger.
func (f *Factory) CreateHistoricalRequests(customers []models.Customer, n int) (int, error) {
	if n <= 0 || len(customers) == 0 {
		return 0, nil
	}

	created := 0
	for i := 0; i < n; i++ {
		customer := customers[f.rand.Intn(len(customers))]
		quantity := f.rand.Intn(5) + 1
		requestedAt := time.Now().Add(-time.Duration(f.rand.Intn(90*24)) * time.Hour)

		token, err := service.NewCancellationToken()
		if err != nil {
			return created, err
		}

		req := models.BoxRequest{
			AccountNumber:     customer.AccountNumber,
			Quantity:          quantity,
			CancellationToken: token,
			Status:            models.BoxRequestStatusPending,
			CreatedAt:         requestedAt,
		}

		cancelled := f.rand.Intn(3) == 0
		if cancelled {
			cancelledAt := requestedAt.Add(time.Duration(f.rand.Intn(48)+1) * time.Hour)
			req.Status = models.BoxRequestStatusCancelled
			req.CancelledAt = &cancelledAt
		}

		err = f.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&req).Error; err != nil {
				return err
			}
			if cancelled {
				return nil
			}
			return tx.Model(&models.Customer{}).
				Where("account_number = ?", customer.AccountNumber).
				Updates(map[string]interface{}{
					"boxes_requested":   gorm.Expr("boxes_requested + ?", quantity),
					"last_request_date": requestedAt,
				}).Error
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
