package models

import "time"

// Staff is a member of the organization that visitors come to see. The
// check-in host and notification recipient.
type Staff struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	FirstName      string       `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName       string       `gorm:"type:varchar(64);not null" json:"last_name"`
	Email          string       `gorm:"type:varchar(120);not null" json:"email"`
	Phone          string       `gorm:"type:varchar(20)" json:"phone"`
	Department     string       `gorm:"type:varchar(64)" json:"department"`
	Position       string       `gorm:"type:varchar(64)" json:"position"`
	Photo          string       `gorm:"type:longtext" json:"photo,omitempty"` // base64 encoded
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

// FullName joins first and last name for template contexts.
func (s *Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}
