// Package models contains data structures for the application's domain models.
package models

import "time"

// Customer represents a document-storage customer account.
type Customer struct {
	ID              uint       `gorm:"primaryKey" json:"-"`
	AccountNumber   string     `gorm:"size:20;not null;uniqueIndex" json:"account_number"`
	CustomerName    string     `gorm:"size:100;not null" json:"customer_name"`
	CompanyName     string     `gorm:"size:150" json:"company_name"`
	Address         string     `gorm:"type:text;not null" json:"address"`
	PhoneNumber     string     `gorm:"size:20" json:"phone_number"`
	Email           string     `gorm:"size:100" json:"email"`
	BoxesRetained   int        `gorm:"not null;default:0" json:"boxes_retained"`
	BoxesRequested  int        `gorm:"not null;default:0" json:"boxes_requested"`
	LastRequestDate *time.Time `json:"last_request_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"-"`

	BoxRequests []BoxRequest `gorm:"foreignKey:AccountNumber;references:AccountNumber;constraint:OnDelete:CASCADE" json:"box_requests,omitempty"`
}

// TableName specifies the table name for GORM.
func (Customer) TableName() string {
	return "customers"
}

// Inventory is the narrow box-count projection of a customer account.
type Inventory struct {
	AccountNumber  string `json:"account_number"`
	CustomerName   string `json:"customer_name"`
	BoxesRetained  int    `json:"boxes_retained"`
	BoxesRequested int    `json:"boxes_requested"`
}

// Inventory returns the box-count projection of the customer.
func (c *Customer) Inventory() Inventory {
	return Inventory{
		AccountNumber:  c.AccountNumber,
		CustomerName:   c.CustomerName,
		BoxesRetained:  c.BoxesRetained,
		BoxesRequested: c.BoxesRequested,
	}
}
