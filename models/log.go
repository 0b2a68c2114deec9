package models

import "time"

// Log is the append-only audit trail. Rows are created on notable actions
// and never updated.
type Log struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	EventID        string       `gorm:"type:varchar(36);uniqueIndex" json:"event_id"`
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	UserID         *uint        `gorm:"index" json:"user_id,omitempty"`
	User           *User        `gorm:"foreignKey:UserID" json:"-"`
	EventType      string       `gorm:"type:varchar(50);not null;index" json:"event_type"`
	EventData      string       `gorm:"type:text" json:"event_data,omitempty"` // JSON payload
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}
