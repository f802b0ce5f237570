package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity entity types
const (
	EntityJob         = "job"
	EntityApplication = "application"
	EntityUser        = "user"
)

// Activity actions
const (
	ActionRegister                = "register"
	ActionCreateJob               = "create_job"
	ActionUpdateJob               = "update_job"
	ActionDeleteJob               = "delete_job"
	ActionSubmitApplication       = "submit_application"
	ActionUpdateApplicationStatus = "update_application_status"
)

// Activity is an append-only audit record of a franchisee-side action.
type Activity struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"userId"`
	Action     string         `gorm:"type:text;not null" json:"action"`
	EntityType string         `gorm:"type:text;not null" json:"entityType"`
	EntityID   uint           `gorm:"not null" json:"entityId"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	Timestamp  time.Time      `gorm:"type:timestamp;index" json:"timestamp"`
}
