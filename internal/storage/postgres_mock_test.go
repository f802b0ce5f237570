package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Jogatev/chebeneleven-sub000/internal/database"
)

func newMockStorage(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return NewPostgresStorage(&database.DBinstanceStruct{DB: gdb}), mock
}

func TestPostgresStorage_GetUserNotFoundIsNotAnError(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	user, err := s.GetUser(context.Background(), 42)

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_QueryErrorsPropagate(t *testing.T) {
	s, mock := newMockStorage(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM "job_listings"`).WillReturnError(boom)

	job, err := s.GetJob(context.Background(), 7)

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ListApplicationsWithoutJobsSkipsQuery(t *testing.T) {
	s, mock := newMockStorage(t)

	apps, err := s.ListApplicationsByJobs(context.Background(), []uint{})

	assert.NoError(t, err)
	assert.Empty(t, apps)
	assert.NoError(t, mock.ExpectationsWereMet())
}
