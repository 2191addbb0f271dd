package models

import "time"

// BoxRequestStatus defines lifecycle states for box requests.
type BoxRequestStatus string

const (
	// BoxRequestStatusPending indicates the request is awaiting delivery.
	BoxRequestStatusPending BoxRequestStatus = "pending"
	// BoxRequestStatusCancelled indicates the request was cancelled by the
	// customer through a cancellation link.
	BoxRequestStatusCancelled BoxRequestStatus = "cancelled"
)

// BoxRequest is a ledger entry recording a customer's request for empty
// storage boxes. The cancellation token is issued once and never changes;
// status only ever moves pending -> cancelled.
//
// There is deliberately no fulfilled/delivered state: a delivered request
// stays pending forever and is indistinguishable from one still in transit.
// That mirrors the upstream business process, which tracks delivery outside
// this system.
type BoxRequest struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	AccountNumber     string           `gorm:"size:20;not null;index" json:"account_number"`
	Quantity          int              `gorm:"not null" json:"quantity"`
	CancellationToken string           `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Status            BoxRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	CancelledAt       *time.Time       `json:"cancelled_at"`

	Customer *Customer `gorm:"foreignKey:AccountNumber;references:AccountNumber" json:"customer,omitempty"`
}

// TableName specifies the table name for GORM.
func (BoxRequest) TableName() string {
	return "box_requests"
}
