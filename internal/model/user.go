package model

import "time"

// User is a franchisee account. It owns job listings and reviews their applications.
type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Password       string    `gorm:"type:text;not null" json:"-"`
	FranchiseeName string    `gorm:"type:text" json:"franchiseeName"`
	FranchiseeID   string    `gorm:"type:text;index" json:"franchiseeId"`
	Location       string    `gorm:"type:text" json:"location"`
	Email          *string   `gorm:"type:text" json:"email,omitempty"`
	CreatedAt      time.Time `gorm:"type:timestamp" json:"createdAt"`
}
