package model

import (
	"time"

	"github.com/lib/pq"
)

// Job listing statuses
const (
	JobStatusActive   = "active"
	JobStatusFilled   = "filled"
	JobStatusClosed   = "closed"
	JobStatusArchived = "archived"
)

// JobStatuses lists every status a job listing may hold.
var JobStatuses = []string{JobStatusActive, JobStatusFilled, JobStatusClosed, JobStatusArchived}

// EditableJobInfo is the part of a job listing a franchisee writes.
type EditableJobInfo struct {
	Title        string         `gorm:"type:text;not null" json:"title" binding:"required"`
	Location     string         `gorm:"type:text;not null" json:"location" binding:"required"`
	Description  string         `gorm:"type:text;not null" json:"description" binding:"required"`
	Requirements string         `gorm:"type:text" json:"requirements"`
	Type         string         `gorm:"type:text;not null" json:"type" binding:"required"`
	Department   string         `gorm:"type:text" json:"department"`
	PayRange     string         `gorm:"type:text" json:"payRange"`
	Benefits     string         `gorm:"type:text" json:"benefits"`
	Status       string         `gorm:"type:text;not null;default:'active';index" json:"status" binding:"omitempty,oneof=active filled closed archived"`
	ClosingDate  *time.Time     `gorm:"type:timestamp" json:"closingDate,omitempty"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags"`
}

// JobListing is gorm model for store job listing data in DB
type JobListing struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"not null;index" json:"userId"`
	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	EditableJobInfo
	CreatedAt time.Time `gorm:"type:timestamp" json:"createdAt"`

	Applications []Application `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

// JobUpdate carries a partial job listing update. Nil fields are left untouched.
type JobUpdate struct {
	Title        *string    `json:"title" binding:"omitempty,min=1"`
	Location     *string    `json:"location" binding:"omitempty,min=1"`
	Description  *string    `json:"description" binding:"omitempty,min=1"`
	Requirements *string    `json:"requirements"`
	Type         *string    `json:"type" binding:"omitempty,min=1"`
	Department   *string    `json:"department"`
	PayRange     *string    `json:"payRange"`
	Benefits     *string    `json:"benefits"`
	Status       *string    `json:"status" binding:"omitempty,oneof=active filled closed archived"`
	ClosingDate  *time.Time `json:"closingDate"`
	Tags         []string   `json:"tags"`
}

// Apply copies every non-nil field of u onto job.
func (u JobUpdate) Apply(job *JobListing) {
	if u.Title != nil {
		job.Title = *u.Title
	}
	if u.Location != nil {
		job.Location = *u.Location
	}
	if u.Description != nil {
		job.Description = *u.Description
	}
	if u.Requirements != nil {
		job.Requirements = *u.Requirements
	}
	if u.Type != nil {
		job.Type = *u.Type
	}
	if u.Department != nil {
		job.Department = *u.Department
	}
	if u.PayRange != nil {
		job.PayRange = *u.PayRange
	}
	if u.Benefits != nil {
		job.Benefits = *u.Benefits
	}
	if u.Status != nil {
		job.Status = *u.Status
	}
	if u.ClosingDate != nil {
		closing := *u.ClosingDate
		job.ClosingDate = &closing
	}
	if u.Tags != nil {
		job.Tags = pq.StringArray(append([]string{}, u.Tags...))
	}
}

// Columns returns the column/value map gorm needs to persist u.
func (u JobUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Requirements != nil {
		cols["requirements"] = *u.Requirements
	}
	if u.Type != nil {
		cols["type"] = *u.Type
	}
	if u.Department != nil {
		cols["department"] = *u.Department
	}
	if u.PayRange != nil {
		cols["pay_range"] = *u.PayRange
	}
	if u.Benefits != nil {
		cols["benefits"] = *u.Benefits
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.ClosingDate != nil {
		cols["closing_date"] = *u.ClosingDate
	}
	if u.Tags != nil {
		cols["tags"] = pq.StringArray(u.Tags)
	}
	return cols
}

// IsEmpty reports whether the update changes nothing.
func (u JobUpdate) IsEmpty() bool {
	return len(u.Columns()) == 0
}
