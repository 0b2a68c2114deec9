package models

import "time"

// Badge stores the fully substituted layout for one check-in. Reprints
// create additional rows; PrintedAt stays null until the print action.
type Badge struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CheckInID    uint       `gorm:"not null;index" json:"check_in_id"`
	CheckIn      CheckIn    `gorm:"foreignKey:CheckInID" json:"-"`
	Reference    string     `gorm:"type:varchar(36);uniqueIndex" json:"reference"`
	TemplateData string     `gorm:"type:text;not null" json:"template_data"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	PrintedAt    *time.Time `json:"printed_at,omitempty"`
}
