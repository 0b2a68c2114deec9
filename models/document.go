package models

import "time"

// Document is an NDA, policy or waiver presented at check-in. Content is an
// opaque blob (HTML or base64 PDF) rendered by the front end.
type Document struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"type:varchar(100);not null" json:"name"`
	Content        string       `gorm:"type:longtext;not null" json:"content"`
	DocumentType   string       `gorm:"type:varchar(50);not null" json:"document_type"` // nda, policy, waiver
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}
