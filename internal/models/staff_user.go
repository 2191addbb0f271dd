package models

import "time"

// StaffUser is an internal operator account used for the staff API
// (listing box requests, resending notifications). Customers never log in;
// the cancellation flow is authenticated by token possession alone.
type StaffUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:60;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for GORM.
func (StaffUser) TableName() string {
	return "staff_users"
}
