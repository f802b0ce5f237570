package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/audit"
	"github.com/Jogatev/chebeneleven-sub000/internal/auth"
	"github.com/Jogatev/chebeneleven-sub000/internal/middleware"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/notify"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
)

// Env bundles an in-memory backend the handler tests share.
type Env struct {
	Store    *storage.MemoryStorage
	Sessions *auth.SessionManager
	Audit    *audit.Recorder
	Mail     *RecordingSender
	Notifier *notify.Notifier
	Log      *zap.Logger
}

var userSeq atomic.Int64

// NewEnv creates a fresh Env.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	sessionStore := auth.NewInMemorySessionStore()
	t.Cleanup(func() { _ = sessionStore.Close() })

	log := zap.NewNop()
	mail := &RecordingSender{}
	return &Env{
		Store:    store,
		Sessions: auth.NewSessionManager(sessionStore, auth.NewTokenSigner("test-secret"), time.Hour, false),
		Audit:    audit.NewRecorder(store, log),
		Mail:     mail,
		Notifier: notify.NewNotifier(mail, log),
		Log:      log,
	}
}

// RequireAuth returns the auth middleware bound to this Env.
func (e *Env) RequireAuth() gin.HandlerFunc {
	return middleware.RequireAuth(e.Sessions, e.Store, e.Log)
}

// CreateFranchisee stores a new franchisee and returns it with a live session token.
func (e *Env) CreateFranchisee(t *testing.T) (*model.User, string) {
	t.Helper()
	n := userSeq.Add(1)
	user, err := e.Store.CreateUser(context.Background(), model.User{
		Username:       fmt.Sprintf("franchisee_%d", n),
		Password:       "unused.hash",
		FranchiseeName: fmt.Sprintf("Store %d", n),
		FranchiseeID:   fmt.Sprintf("F-%d", n),
		Location:       "Phoenix, AZ",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)
	token, err := e.Sessions.Start(c, user.ID)
	require.NoError(t, err)
	return user, token
}

// CreateJob stores an active job listing owned by userID.
func (e *Env) CreateJob(t *testing.T, userID uint, title string) *model.JobListing {
	t.Helper()
	job, err := e.Store.CreateJob(context.Background(), model.JobListing{
		UserID: userID,
		EditableJobInfo: model.EditableJobInfo{
			Title:       title,
			Location:    "Phoenix, AZ",
			Description: "Join the team",
			Type:        "full-time",
			Department:  "Kitchen",
		},
	})
	require.NoError(t, err)
	return job
}

// CreateApplication stores an application for jobID.
func (e *Env) CreateApplication(t *testing.T, jobID uint) *model.Application {
	t.Helper()
	app, err := e.Store.CreateApplication(context.Background(), model.Application{
		ApplicantInfo: model.ApplicantInfo{
			JobID:     jobID,
			FirstName: "Sam",
			LastName:  "Rivera",
			Email:     "sam@example.com",
			Phone:     "555-0199",
		},
	})
	require.NoError(t, err)
	return app
}

// Activities lists every activity of userID.
func (e *Env) Activities(t *testing.T, userID uint) []model.Activity {
	t.Helper()
	activities, err := e.Store.ListActivitiesByUser(context.Background(), userID, 0)
	require.NoError(t, err)
	return activities
}

// RecordingSender collects messages instead of sending them.
type RecordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
	Err  error
}

// Send implements notify.Sender.
func (r *RecordingSender) Send(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the collected messages.
func (r *RecordingSender) Sent() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.sent...)
}
