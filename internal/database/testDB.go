package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Jogatev/chebeneleven-sub000/internal/config"
)

// TestDB is a migrated database running in a throwaway PostgreSQL container.
type TestDB struct {
	*DBinstanceStruct
	container *postgres.PostgresContainer
}

// Terminate closes the connection pool and removes the container.
func (t *TestDB) Terminate(ctx context.Context) error {
	if t.DBinstanceStruct != nil {
		_ = t.DBinstanceStruct.Close()
	}
	return testcontainers.TerminateContainer(t.container, testcontainers.StopContext(ctx))
}

var (
	testDBOnce sync.Once
	testDB     *TestDB
	testDBErr  error
)

// GetTestDB starts (once per test binary) a PostgreSQL container with the job board schema.
// A failed start is cached too, so callers can skip instead of retrying.
func GetTestDB(ctx context.Context) (*TestDB, error) {
	testDBOnce.Do(func() {
		testDB, testDBErr = startTestDB(ctx)
	})
	return testDB, testDBErr
}

func startTestDB(ctx context.Context) (*TestDB, error) {
	settings := config.DBSettings{
		Name:     "jobboard_test",
		User:     "jobboard",
		Password: "jobboard",
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(settings.Name),
		postgres.WithUsername(settings.User),
		postgres.WithPassword(settings.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}
	tdb := &TestDB{container: container}

	host, err := container.Host(ctx)
	if err != nil {
		_ = tdb.Terminate(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		_ = tdb.Terminate(ctx)
		return nil, err
	}
	settings.Host = host
	settings.Port = port.Port()

	db, err := NewDBInstance(ConfigFromSettings(settings))
	if err != nil {
		_ = tdb.Terminate(ctx)
		return nil, err
	}
	tdb.DBinstanceStruct = db
	return tdb, nil
}
