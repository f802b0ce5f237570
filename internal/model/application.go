package model

import (
	"time"

	"github.com/lib/pq"
)

// Application statuses. Any status may follow any other.
const (
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusUnderReview = "under_review"
	ApplicationStatusInterview   = "interview"
	ApplicationStatusInterviewed = "interviewed"
	ApplicationStatusAccepted    = "accepted"
	ApplicationStatusRejected    = "rejected"
)

// ApplicationStatuses lists every status an application may hold.
var ApplicationStatuses = []string{
	ApplicationStatusSubmitted,
	ApplicationStatusUnderReview,
	ApplicationStatusInterview,
	ApplicationStatusInterviewed,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
}

// ApplicantInfo is what an applicant submits.
type ApplicantInfo struct {
	JobID        uint           `gorm:"not null;index" json:"jobId" binding:"required"`
	FirstName    string         `gorm:"type:text;not null" json:"firstName" binding:"required"`
	LastName     string         `gorm:"type:text;not null" json:"lastName" binding:"required"`
	Email        string         `gorm:"type:text;not null" json:"email" binding:"required,email"`
	Phone        string         `gorm:"type:text;not null" json:"phone" binding:"required"`
	ResumeURL    string         `gorm:"type:text" json:"resumeUrl"`
	Experience   string         `gorm:"type:text" json:"experience"`
	Education    string         `gorm:"type:text" json:"education"`
	Availability pq.StringArray `gorm:"type:text[]" json:"availability"`
	CoverLetter  string         `gorm:"type:text" json:"coverLetter"`
}

// Application represents a job application record
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicantInfo
	ReferenceID string    `gorm:"type:text;not null;uniqueIndex" json:"referenceId"`
	Status      string    `gorm:"type:text;not null;default:'submitted'" json:"status"`
	CreatedAt   time.Time `gorm:"type:timestamp" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"type:timestamp" json:"updatedAt"`
}

// ApplicationWithJob is an application enriched with the listing it targets.
type ApplicationWithJob struct {
	Application
	JobTitle    string `json:"jobTitle"`
	JobLocation string `json:"jobLocation"`
}

// ApplicationTracking is the applicant-facing view of an application.
type ApplicationTracking struct {
	ReferenceID string    `json:"referenceId"`
	Status      string    `json:"status"`
	JobTitle    string    `json:"jobTitle"`
	JobLocation string    `json:"jobLocation"`
	SubmittedAt time.Time `json:"submittedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
