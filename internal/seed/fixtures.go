package seed

import (
	"fmt"
	"os"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// customerFixture is the YAML shape for a seeded account.
type customerFixture struct {
	AccountNumber string `yaml:"account_number"`
	CustomerName  string `yaml:"customer_name"`
	CompanyName   string `yaml:"company_name"`
	Address       string `yaml:"address"`
	PhoneNumber   string `yaml:"phone_number"`
	Email         string `yaml:"email"`
	BoxesRetained int    `yaml:"boxes_retained"`
}

type fixtureFile struct {
	Customers []customerFixture `yaml:"customers"`
}

// LoadFixtures reads a YAML fixture file and upserts its customers.
// Lets demo environments carry their own account sets without code changes.
func LoadFixtures(db *gorm.DB, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixtures: %w", err)
	}

	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse fixtures: %w", err)
	}

	loaded := 0
	for i, fc := range file.Customers {
		if fc.AccountNumber == "" || fc.CustomerName == "" {
			return loaded, fmt.Errorf("fixture %d: account_number and customer_name are required", i)
		}
		customer := models.Customer{
			AccountNumber: fc.AccountNumber,
			CustomerName:  fc.CustomerName,
			CompanyName:   fc.CompanyName,
			Address:       fc.Address,
			PhoneNumber:   fc.PhoneNumber,
			Email:         fc.Email,
			BoxesRetained: fc.BoxesRetained,
		}
		err := db.Where("account_number = ?", customer.AccountNumber).
			FirstOrCreate(&customer).Error
		if err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
