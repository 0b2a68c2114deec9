package models

import "time"

// Subscription mirrors one billing cycle reported by the payment processor.
// Upserts are keyed on StripeSubscriptionID so webhook replays converge.
type Subscription struct {
	ID                   uint         `gorm:"primaryKey" json:"id"`
	OrganizationID       uint         `gorm:"not null;index" json:"organization_id"`
	Organization         Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	PlanName             string       `gorm:"type:varchar(50);not null" json:"plan_name"`
	Status               string       `gorm:"type:varchar(20);not null" json:"status"`
	StripeSubscriptionID string       `gorm:"type:varchar(100);index" json:"-"`
	BillingCycle         string       `gorm:"type:varchar(16)" json:"billing_cycle"`
	StartDate            time.Time    `gorm:"not null" json:"start_date"`
	EndDate              *time.Time   `json:"end_date,omitempty"`
	Price                float64      `gorm:"type:decimal(10,2);not null;default:0.00" json:"price"`
	Features             string       `gorm:"type:text" json:"features"` // JSON snapshot of plan limits
	CreatedAt            time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time    `gorm:"not null" json:"updated_at"`
}
