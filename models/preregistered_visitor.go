package models

import "time"

// Preregistration status values. Transitions are forward only:
// pending -> checked_in or pending -> cancelled.
const (
	PreregStatusPending   = "pending"
	PreregStatusCheckedIn = "checked_in"
	PreregStatusCancelled = "cancelled"
)

type PreregisteredVisitor struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	FirstName       string       `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName        string       `gorm:"type:varchar(64);not null" json:"last_name"`
	Email           string       `gorm:"type:varchar(120);not null" json:"email"`
	Phone           string       `gorm:"type:varchar(20)" json:"phone"`
	Company         string       `gorm:"type:varchar(100)" json:"company"`
	Purpose         string       `gorm:"type:varchar(200)" json:"purpose"`
	ExpectedArrival time.Time    `gorm:"not null" json:"expected_arrival"`
	StaffID         uint         `gorm:"not null;index" json:"staff_id"`
	Host            Staff        `gorm:"foreignKey:StaffID" json:"host"`
	OrganizationID  uint         `gorm:"not null;index" json:"organization_id"`
	Organization    Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Status          string       `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}
