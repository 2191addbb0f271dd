// Package seed provides database seeding utilities for development and demos.
package seed

import (
	"fmt"
	"log"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// NumExtraCustomers adds randomly generated accounts on top of the
	// fixed demo set.
	NumExtraCustomers int
	// NumHistorical adds past box requests spread across all accounts.
	NumHistorical int
	ShouldClean   bool
}

// demoCustomers is the fixed set of accounts referenced in demos and docs.
// Account numbers are stable so that scripted walkthroughs always work.
var demoCustomers = []models.Customer{
	{
		AccountNumber: "IM-10001",
		CustomerName:  "Yousef Al-Mansoori",
		CompanyName:   "Tech Innovations LLC",
		Address:       "Dubai Marina, Dubai, UAE",
		PhoneNumber:   "+971-50-123-4567",
		Email:         "yousef@techinnovations.ae",
		BoxesRetained: 15,
	},
	{
		AccountNumber: "IM-10002",
		CustomerName:  "Sarah Johnson",
		CompanyName:   "Legal Associates",
		Address:       "Al Maryah Island, Abu Dhabi, UAE",
		PhoneNumber:   "+971-50-234-5678",
		Email:         "sarah@legalassoc.ae",
		BoxesRetained: 8,
	},
	{
		AccountNumber: "IM-10003",
		CustomerName:  "Ahmed Hassan",
		CompanyName:   "Financial Consultants",
		Address:       "Business Bay, Dubai, UAE",
		PhoneNumber:   "+971-50-345-6789",
		Email:         "ahmed@finconsult.ae",
		BoxesRetained: 22,
	},
	{
		AccountNumber: "IM-10004",
		CustomerName:  "Emily Roberts",
		CompanyName:   "Healthcare Solutions",
		Address:       "Dubai Healthcare City, Dubai, UAE",
		PhoneNumber:   "+971-50-456-7890",
		Email:         "emily@healthsol.ae",
		BoxesRetained: 12,
	},
	{
		AccountNumber: "IM-10005",
		CustomerName:  "Mohammed Ali",
		CompanyName:   "Trading Partners LLC",
		Address:       "Deira, Dubai, UAE",
		PhoneNumber:   "+971-50-567-8901",
		Email:         "mohammed@tradingpartners.ae",
		BoxesRetained: 30,
	},
}

// Seed populates the database with the demo accounts plus optional
// generated data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding database (%d extra customers, %d historical requests)...",
		opts.NumExtraCustomers, opts.NumHistorical)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: could not clear all existing data, continuing anyway...")
		}
	}

	customers, err := ensureDemoCustomers(db)
	if err != nil {
		return fmt.Errorf("failed to seed demo customers: %w", err)
	}
	log.Printf("✓ %d demo customers available", len(customers))

	if opts.NumExtraCustomers > 0 || opts.NumHistorical > 0 {
		f := NewFactory(db)
		extra, err := f.CreateCustomers(opts.NumExtraCustomers)
		if err != nil {
			return fmt.Errorf("failed to create extra customers: %w", err)
		}
		customers = append(customers, extra...)
		log.Printf("✓ %d extra customers created", len(extra))

		created, err := f.CreateHistoricalRequests(customers, opts.NumHistorical)
		if err != nil {
			return fmt.Errorf("failed to create historical requests: %w", err)
		}
		log.Printf("✓ %d historical box requests created", created)
	}

	log.Println("🎉 Seeding complete")
	return nil
}

// ensureDemoCustomers upserts the fixed demo set. Existing rows are left
// untouched so local box counts survive reseeding.
func ensureDemoCustomers(db *gorm.DB) ([]models.Customer, error) {
	out := make([]models.Customer, 0, len(demoCustomers))
	for _, c := range demoCustomers {
		customer := c
		err := db.Where("account_number = ?", customer.AccountNumber).
			FirstOrCreate(&customer).Error
		if err != nil {
			return nil, err
		}
		out = append(out, customer)
	}
	return out, nil
}

func clearData(db *gorm.DB) error {
	// Requests first to satisfy the FK to customers.
	if err := db.Exec("DELETE FROM box_requests").Error; err != nil {
		return err
	}
	return db.Exec("DELETE FROM customers").Error
}
