package models

import "time"

// Organization is the tenant root. Every other record in the system carries
// an OrganizationID and every query must filter by it.
type Organization struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"type:varchar(100);not null" json:"name"`
	Logo           string `gorm:"type:longtext" json:"logo,omitempty"` // base64 encoded
	PrimaryColor   string `gorm:"type:varchar(20);default:'#007bff'" json:"primary_color"`
	SecondaryColor string `gorm:"type:varchar(20);default:'#6c757d'" json:"secondary_color"`
	ContactEmail   string `gorm:"type:varchar(120)" json:"contact_email"`
	ContactPhone   string `gorm:"type:varchar(20)" json:"contact_phone"`
	Address        string `gorm:"type:text" json:"address"`

	// Badge layout stored as an opaque JSON document, interpreted only by
	// the badge service.
	BadgeTemplate string `gorm:"type:text" json:"badge_template,omitempty"`

	SubscriptionPlan      string     `gorm:"type:varchar(50);default:'free'" json:"subscription_plan"`
	SubscriptionStatus    string     `gorm:"type:varchar(20);default:'active'" json:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	StripeCustomerID      string     `gorm:"type:varchar(100);index" json:"-"`

	EnablePhotoCapture       bool `gorm:"default:true" json:"enable_photo_capture"`
	EnableBadgePrinting      bool `gorm:"default:true" json:"enable_badge_printing"`
	EnableAutoCheckout       bool `gorm:"default:true" json:"enable_auto_checkout"`
	EnableEmailNotifications bool `gorm:"default:true" json:"enable_email_notifications"`

	// Open check-ins older than this many hours are closed by the sweep.
	AutoCheckoutDelayHours int `gorm:"default:8" json:"auto_checkout_delay_hours"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
