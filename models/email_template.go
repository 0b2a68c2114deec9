package models

import "time"

// Template types resolved by the notification service.
const (
	TemplateCheckIn     = "check_in"
	TemplateCheckOut    = "check_out"
	TemplatePreregister = "preregister"
)

type EmailTemplate struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"type:varchar(100);not null" json:"name"`
	Subject        string       `gorm:"type:varchar(200);not null" json:"subject"`
	Body           string       `gorm:"type:text;not null" json:"body"`
	TemplateType   string       `gorm:"type:varchar(50);not null;index" json:"template_type"`
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}
