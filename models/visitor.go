package models

import "time"

// Visitor identity is de-duplicated by (email, organization) at check-in
// time; a visitor with no email always gets a fresh record.
type Visitor struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	FirstName      string       `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName       string       `gorm:"type:varchar(64);not null" json:"last_name"`
	Email          string       `gorm:"type:varchar(120);index" json:"email"`
	Phone          string       `gorm:"type:varchar(20)" json:"phone"`
	Company        string       `gorm:"type:varchar(100)" json:"company"`
	Photo          string       `gorm:"type:longtext" json:"photo,omitempty"` // base64 encoded
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`

	CheckIns []CheckIn `gorm:"foreignKey:VisitorID" json:"check_ins,omitempty"`
}

func (v *Visitor) FullName() string {
	return v.FirstName + " " + v.LastName
}
