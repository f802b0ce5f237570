// Package storage defines the persistence contract shared by the in-memory and PostgreSQL backends.
//
// Lookups report absence with a nil result (or false for deletes), never with an error.
// Errors mean the backend itself failed.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Jogatev/chebeneleven-sub000/internal/model"
)

// ErrDuplicateUsername is returned by CreateUser when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrUnknownJob is returned by CreateApplication when the referenced job listing does not exist.
var ErrUnknownJob = errors.New("job listing does not exist")

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Status     string
	UserID     uint
	Search     string
	Location   string
	Type       string
	Department string
	// Ascending orders by creation time oldest first.
	Ascending bool
}

// Storage is the repository contract used by every handler.
type Storage interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user model.User) (*model.User, error)

	GetJob(ctx context.Context, id uint) (*model.JobListing, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.JobListing, error)
	CreateJob(ctx context.Context, job model.JobListing) (*model.JobListing, error)
	UpdateJob(ctx context.Context, id uint, update model.JobUpdate) (*model.JobListing, error)
	DeleteJob(ctx context.Context, id uint) (bool, error)

	GetApplication(ctx context.Context, id uint) (*model.Application, error)
	GetApplicationByReference(ctx context.Context, referenceID string) (*model.Application, error)
	ListApplicationsByJobs(ctx context.Context, jobIDs []uint) ([]model.Application, error)
	CreateApplication(ctx context.Context, app model.Application) (*model.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uint, status string) (*model.Application, error)

	CreateActivity(ctx context.Context, activity model.Activity) (*model.Activity, error)
	ListActivitiesByUser(ctx context.Context, userID uint, limit int) ([]model.Activity, error)

	// Health reports backend status for the /health endpoint.
	Health() map[string]string
	Close() error
}

// now returns the current time at the precision PostgreSQL timestamps keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// prepareJob fills server-side fields before insert.
func prepareJob(job *model.JobListing, ts time.Time) {
	job.ID = 0
	job.CreatedAt = ts
	if job.Status == "" {
		job.Status = model.JobStatusActive
	}
}

// prepareApplication fills server-side fields before insert.
func prepareApplication(app *model.Application, ts time.Time) {
	app.ID = 0
	app.ReferenceID = model.NewReferenceID(ts)
	app.CreatedAt = ts
	app.UpdatedAt = ts
	if app.Status == "" {
		app.Status = model.ApplicationStatusSubmitted
	}
}
