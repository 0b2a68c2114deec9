package models

import "time"

// CheckIn marks a visitor's presence window. Active while CheckOutTime is
// null; immutable once closed.
type CheckIn struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	VisitorID    uint       `gorm:"not null;index" json:"visitor_id"`
	Visitor      Visitor    `gorm:"foreignKey:VisitorID" json:"visitor"`
	StaffID      *uint      `gorm:"index" json:"staff_id,omitempty"`
	Host         *Staff     `gorm:"foreignKey:StaffID" json:"host,omitempty"`
	CheckInTime  time.Time  `gorm:"not null;index" json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Purpose      string     `gorm:"type:varchar(200)" json:"purpose"`
	Notes        string     `gorm:"type:text" json:"notes"`
	BadgePrinted bool       `gorm:"default:false" json:"badge_printed"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

// IsActive reports whether the visitor is still on site.
func (ci *CheckIn) IsActive() bool {
	return ci.CheckOutTime == nil
}
