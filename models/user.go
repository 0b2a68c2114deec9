package models

import "time"

type User struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Username       string       `gorm:"type:varchar(64);unique;not null" json:"username"`
	Email          string       `gorm:"type:varchar(120);unique;not null" json:"email"`
	Password       string       `gorm:"type:varchar(255);not null" json:"-"`
	FirstName      string       `gorm:"type:varchar(64)" json:"first_name"`
	LastName       string       `gorm:"type:varchar(64)" json:"last_name"`
	IsAdmin        bool         `gorm:"default:false" json:"is_admin"`
	IsActive       bool         `gorm:"default:true" json:"is_active"`
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	LastLogin      *time.Time   `json:"last_login,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}
