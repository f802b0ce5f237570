package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jogatev/chebeneleven-sub000/internal/database"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStorage implements Storage with GORM on PostgreSQL.
type PostgresStorage struct {
	DB *database.DBinstanceStruct
}

// NewPostgresStorage wraps an initialised database instance.
func NewPostgresStorage(db *database.DBinstanceStruct) *PostgresStorage {
	return &PostgresStorage{DB: db}
}

var _ Storage = (*PostgresStorage)(nil)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// first runs a First query and turns gorm.ErrRecordNotFound into a false found flag.
func first(tx *gorm.DB, dest interface{}, conds ...interface{}) (bool, error) {
	err := tx.First(dest, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func newestFirst(column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true}
}

// GetUser returns the user with the given id, or nil.
func (p *PostgresStorage) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	found, err := first(p.DB.WithContext(ctx), &user, id)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername returns the user with the given username, or nil.
func (p *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	found, err := first(p.DB.WithContext(ctx).Where("username = ?", username), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (p *PostgresStorage) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	user.ID = 0
	user.CreatedAt = now()
	if err := p.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return &user, nil
}

// GetJob returns the job listing with the given id, or nil.
func (p *PostgresStorage) GetJob(ctx context.Context, id uint) (*model.JobListing, error) {
	var job model.JobListing
	found, err := first(p.DB.WithContext(ctx), &job, id)
	if err != nil || !found {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns the job listings matching filter.
func (p *PostgresStorage) ListJobs(ctx context.Context, filter JobFilter) ([]model.JobListing, error) {
	query := p.DB.WithContext(ctx).Model(&model.JobListing{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.Type != "" {
		query = query.Where(`"type" ILIKE ?`, "%"+filter.Type+"%")
	}
	if filter.Department != "" {
		query = query.Where("department ILIKE ?", "%"+filter.Department+"%")
	}

	jobs := []model.JobListing{}
	err := query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: "created_at"},
		Desc:   !filter.Ascending,
	}).Order(clause.OrderByColumn{
		Column: clause.Column{Name: "id"},
		Desc:   !filter.Ascending,
	}).Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// CreateJob inserts a new job listing.
func (p *PostgresStorage) CreateJob(ctx context.Context, job model.JobListing) (*model.JobListing, error) {
	prepareJob(&job, now())
	job.User = model.User{}
	job.Applications = nil
	if err := p.DB.WithContext(ctx).Omit(clause.Associations).Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob applies update to the job listing, or returns nil when it does not exist.
func (p *PostgresStorage) UpdateJob(ctx context.Context, id uint, update model.JobUpdate) (*model.JobListing, error) {
	var job model.JobListing
	var found bool

	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = first(tx, &job, id)
		if err != nil || !found {
			return err
		}

		if cols := update.Columns(); len(cols) > 0 {
			if err := tx.Model(&model.JobListing{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}

		_, err = first(tx, &job, id)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &job, nil
}

// DeleteJob removes the job listing and its applications.
func (p *PostgresStorage) DeleteJob(ctx context.Context, id uint) (bool, error) {
	var deleted int64
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&model.Application{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.JobListing{}, id)
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// GetApplication returns the application with the given id, or nil.
func (p *PostgresStorage) GetApplication(ctx context.Context, id uint) (*model.Application, error) {
	var app model.Application
	found, err := first(p.DB.WithContext(ctx), &app, id)
	if err != nil || !found {
		return nil, err
	}
	return &app, nil
}

// GetApplicationByReference returns the application with the given reference id, or nil.
func (p *PostgresStorage) GetApplicationByReference(ctx context.Context, referenceID string) (*model.Application, error) {
	var app model.Application
	found, err := first(p.DB.WithContext(ctx).Where("reference_id = ?", referenceID), &app)
	if err != nil || !found {
		return nil, err
	}
	return &app, nil
}

// ListApplicationsByJobs returns the applications of the given job listings, newest first.
func (p *PostgresStorage) ListApplicationsByJobs(ctx context.Context, jobIDs []uint) ([]model.Application, error) {
	apps := []model.Application{}
	if len(jobIDs) == 0 {
		return apps, nil
	}

	err := p.DB.WithContext(ctx).
		Where("job_id IN ?", jobIDs).
		Order(newestFirst("created_at")).
		Order(newestFirst("id")).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateApplication inserts a new application with a generated reference id.
func (p *PostgresStorage) CreateApplication(ctx context.Context, app model.Application) (*model.Application, error) {
	prepareApplication(&app, now())
	if err := p.DB.WithContext(ctx).Create(&app).Error; err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, fmt.Errorf("%w: %d", ErrUnknownJob, app.JobID)
		}
		return nil, err
	}
	return &app, nil
}

// UpdateApplicationStatus sets the status of the application, or returns nil when it does not exist.
func (p *PostgresStorage) UpdateApplicationStatus(ctx context.Context, id uint, status string) (*model.Application, error) {
	result := p.DB.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return p.GetApplication(ctx, id)
}

// CreateActivity appends an activity record.
func (p *PostgresStorage) CreateActivity(ctx context.Context, activity model.Activity) (*model.Activity, error) {
	activity.ID = 0
	activity.Timestamp = now()
	if err := p.DB.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListActivitiesByUser returns the user's most recent activities. A limit <= 0 returns all of them.
func (p *PostgresStorage) ListActivitiesByUser(ctx context.Context, userID uint, limit int) ([]model.Activity, error) {
	query := p.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(newestFirst("timestamp")).
		Order(newestFirst("id"))
	if limit > 0 {
		query = query.Limit(limit)
	}

	activities := []model.Activity{}
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Health reports database connectivity.
func (p *PostgresStorage) Health() map[string]string {
	return p.DB.Health()
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	return p.DB.Close()
}
