package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/Jogatev/chebeneleven-sub000/internal/model"
)

// MemoryStorage keeps every entity in process memory. State is lost on restart and is not shared
// between instances, so it only suits local development and demos.
type MemoryStorage struct {
	mu           sync.RWMutex
	users        map[uint]model.User
	jobs         map[uint]model.JobListing
	applications map[uint]model.Application
	activities   map[uint]model.Activity

	nextUserID        atomic.Uint64
	nextJobID         atomic.Uint64
	nextApplicationID atomic.Uint64
	nextActivityID    atomic.Uint64
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:        map[uint]model.User{},
		jobs:         map[uint]model.JobListing{},
		applications: map[uint]model.Application{},
		activities:   map[uint]model.Activity{},
	}
}

var _ Storage = (*MemoryStorage)(nil)

func nextID(counter *atomic.Uint64) uint {
	return uint(counter.Add(1))
}

// GetUser returns the user with the given id, or nil.
func (m *MemoryStorage) GetUser(_ context.Context, id uint) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByUsername returns the user with the given username, or nil.
func (m *MemoryStorage) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// CreateUser stores a new user and assigns its id.
func (m *MemoryStorage) CreateUser(_ context.Context, user model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, ErrDuplicateUsername
		}
	}

	user.ID = nextID(&m.nextUserID)
	user.CreatedAt = now()
	m.users[user.ID] = user
	return &user, nil
}

// GetJob returns the job listing with the given id, or nil.
func (m *MemoryStorage) GetJob(_ context.Context, id uint) (*model.JobListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	job = copyJob(job)
	return &job, nil
}

// ListJobs returns the job listings matching filter.
func (m *MemoryStorage) ListJobs(_ context.Context, filter JobFilter) ([]model.JobListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := []model.JobListing{}
	for _, job := range m.jobs {
		if matchesJob(job, filter) {
			jobs = append(jobs, copyJob(job))
		}
	}

	sort.Slice(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if filter.Ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if filter.Ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return jobs, nil
}

// CreateJob stores a new job listing.
func (m *MemoryStorage) CreateJob(_ context.Context, job model.JobListing) (*model.JobListing, error) {
	prepareJob(&job, now())
	job = copyJob(job)

	m.mu.Lock()
	defer m.mu.Unlock()

	job.ID = nextID(&m.nextJobID)
	m.jobs[job.ID] = job
	out := copyJob(job)
	return &out, nil
}

// UpdateJob applies update to the job listing, or returns nil when it does not exist.
func (m *MemoryStorage) UpdateJob(_ context.Context, id uint, update model.JobUpdate) (*model.JobListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	update.Apply(&job)
	m.jobs[id] = job
	out := copyJob(job)
	return &out, nil
}

// DeleteJob removes the job listing and its applications.
func (m *MemoryStorage) DeleteJob(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return false, nil
	}
	delete(m.jobs, id)
	for appID, app := range m.applications {
		if app.JobID == id {
			delete(m.applications, appID)
		}
	}
	return true, nil
}

// GetApplication returns the application with the given id, or nil.
func (m *MemoryStorage) GetApplication(_ context.Context, id uint) (*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	app = copyApplication(app)
	return &app, nil
}

// GetApplicationByReference returns the application with the given reference id, or nil.
func (m *MemoryStorage) GetApplicationByReference(_ context.Context, referenceID string) (*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, app := range m.applications {
		if app.ReferenceID == referenceID {
			found := copyApplication(app)
			return &found, nil
		}
	}
	return nil, nil
}

// ListApplicationsByJobs returns the applications of the given job listings, newest first.
func (m *MemoryStorage) ListApplicationsByJobs(_ context.Context, jobIDs []uint) ([]model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[uint]bool, len(jobIDs))
	for _, id := range jobIDs {
		wanted[id] = true
	}

	apps := []model.Application{}
	for _, app := range m.applications {
		if wanted[app.JobID] {
			apps = append(apps, copyApplication(app))
		}
	}

	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].CreatedAt.After(apps[j].CreatedAt)
		}
		return apps[i].ID > apps[j].ID
	})
	return apps, nil
}

// CreateApplication stores a new application with a generated reference id.
func (m *MemoryStorage) CreateApplication(_ context.Context, app model.Application) (*model.Application, error) {
	prepareApplication(&app, now())
	app = copyApplication(app)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[app.JobID]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJob, app.JobID)
	}
	app.ID = nextID(&m.nextApplicationID)
	m.applications[app.ID] = app
	out := copyApplication(app)
	return &out, nil
}

// UpdateApplicationStatus sets the status of the application, or returns nil when it does not exist.
func (m *MemoryStorage) UpdateApplicationStatus(_ context.Context, id uint, status string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	app.Status = status
	app.UpdatedAt = now()
	m.applications[id] = app
	out := copyApplication(app)
	return &out, nil
}

// CreateActivity appends an activity record.
func (m *MemoryStorage) CreateActivity(_ context.Context, activity model.Activity) (*model.Activity, error) {
	activity.Timestamp = now()
	activity.Details = append(datatypes.JSON(nil), activity.Details...)

	m.mu.Lock()
	defer m.mu.Unlock()

	activity.ID = nextID(&m.nextActivityID)
	m.activities[activity.ID] = activity
	return &activity, nil
}

// ListActivitiesByUser returns the user's most recent activities. A limit <= 0 returns all of them.
func (m *MemoryStorage) ListActivitiesByUser(_ context.Context, userID uint, limit int) ([]model.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	activities := []model.Activity{}
	for _, a := range m.activities {
		if a.UserID == userID {
			activities = append(activities, a)
		}
	}

	sort.Slice(activities, func(i, j int) bool {
		if !activities[i].Timestamp.Equal(activities[j].Timestamp) {
			return activities[i].Timestamp.After(activities[j].Timestamp)
		}
		return activities[i].ID > activities[j].ID
	})

	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

// Health always reports up.
func (m *MemoryStorage) Health() map[string]string {
	return map[string]string{
		"status":  "up",
		"message": "in-memory storage",
	}
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}

func matchesJob(job model.JobListing, f JobFilter) bool {
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	if f.UserID != 0 && job.UserID != f.UserID {
		return false
	}
	return containsFold(job.Title, f.Search) &&
		containsFold(job.Location, f.Location) &&
		containsFold(job.Type, f.Type) &&
		containsFold(job.Department, f.Department)
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func copyJob(job model.JobListing) model.JobListing {
	if job.Tags != nil {
		job.Tags = append(pq.StringArray{}, job.Tags...)
	}
	if job.ClosingDate != nil {
		closing := *job.ClosingDate
		job.ClosingDate = &closing
	}
	job.Applications = nil
	return job
}

func copyApplication(app model.Application) model.Application {
	if app.Availability != nil {
		app.Availability = append(pq.StringArray{}, app.Availability...)
	}
	return app
}
