package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Jogatev/chebeneleven-sub000/internal/auth"
	"github.com/Jogatev/chebeneleven-sub000/internal/config"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/testutil"
	"github.com/Jogatev/chebeneleven-sub000/internal/upload"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:          8080,
		Env:           "dev",
		AllowOrigins:  []string{"http://localhost:5173"},
		StorageDriver: config.StorageMemory,
		Session: config.SessionSettings{
			Secret: "server-test-secret",
			TTL:    time.Hour,
			Store:  "memory",
		},
		Email:              config.EmailSettings{Provider: "log"},
		Upload:             config.UploadSettings{Dir: t.TempDir(), MaxBytes: 1 << 20},
		RateLimitPerSecond: 100,
	}
}

type fixture struct {
	handler http.Handler
	store   *storage.MemoryStorage
	mail    *testutil.RecordingSender
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	sessionStore := auth.NewInMemorySessionStore()
	t.Cleanup(func() { _ = sessionStore.Close() })
	uploads, err := upload.NewLocalStore(cfg.Upload.Dir)
	require.NoError(t, err)
	mail := &testutil.RecordingSender{}

	s := NewServerWithDeps(cfg, zaptest.NewLogger(t), Deps{
		Store:    store,
		Sessions: auth.NewSessionManager(sessionStore, auth.NewTokenSigner(cfg.Session.Secret), cfg.Session.TTL, false),
		Uploads:  uploads,
		Mailer:   mail,
	})
	return &fixture{handler: s.RegisterRoutes(), store: store, mail: mail}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestEndToEnd_registerPostApplyReview(t *testing.T) {
	f := newFixture(t, testConfig(t))

	// register logs the franchisee in
	rec, resp := f.do(t, http.MethodPost, "/api/register", gin.H{
		"username":       "phoenix_central",
		"password":       "sandwiches4ever",
		"franchiseeName": "Phoenix Central",
		"location":       "Phoenix, AZ",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := resp["accessToken"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, rec.Result().Cookies())

	rec, resp = f.do(t, http.MethodPost, "/api/jobs", gin.H{
		"title":       "Sandwich Artist",
		"location":    "Phoenix, AZ",
		"description": "Make great sandwiches",
		"type":        "part-time",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	jobID := resp["id"].(float64)

	// anonymous application
	rec, resp = f.do(t, http.MethodPost, "/api/applications", gin.H{
		"jobId":     jobID,
		"firstName": "Alex",
		"lastName":  "Kim",
		"email":     "alex@example.com",
		"phone":     "555-0111",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ref := resp["referenceId"].(string)
	appID := resp["id"].(float64)

	req := httptest.NewRequest(http.MethodGet, "/api/my-applications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listRec := httptest.NewRecorder()
	f.handler.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	var apps []map[string]interface{}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "Sandwich Artist", apps[0]["jobTitle"])
	assert.Equal(t, "Phoenix, AZ", apps[0]["jobLocation"])
	assert.Equal(t, ref, apps[0]["referenceId"])

	rec, _ = f.do(t, http.MethodPatch, fmt.Sprintf("/api/applications/%d", int(appID)), gin.H{"status": "interview"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp = f.do(t, http.MethodGet, "/api/applications/track/"+ref, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "interview", resp["status"])

	// one email per application event
	assert.Len(t, f.mail.Sent(), 2)

	req = httptest.NewRequest(http.MethodGet, "/api/my-activities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	actRec := httptest.NewRecorder()
	f.handler.ServeHTTP(actRec, req)
	require.Equal(t, http.StatusOK, actRec.Code)
	var activities []map[string]interface{}
	require.NoError(t, json.Unmarshal(actRec.Body.Bytes(), &activities))
	require.Len(t, activities, 4)
	actions := make([]string, 0, len(activities))
	for _, a := range activities {
		actions = append(actions, a["action"].(string))
	}
	assert.ElementsMatch(t, []string{"register", "create_job", "submit_application", "update_application_status"}, actions)
}

func TestCookieSessionAndLogout(t *testing.T) {
	f := newFixture(t, testConfig(t))

	rec, _ := f.do(t, http.MethodPost, "/api/register", gin.H{
		"username":       "tempe_store",
		"password":       "correct-horse",
		"franchiseeName": "Tempe",
		"location":       "Tempe, AZ",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	withCookies := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	rec = withCookies(http.MethodGet, "/api/user")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tempe_store")

	rec = withCookies(http.MethodPost, "/api/logout")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = withCookies(http.MethodGet, "/api/user")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNonOwnerCannotEditJob(t *testing.T) {
	f := newFixture(t, testConfig(t))

	register := func(name string) string {
		rec, resp := f.do(t, http.MethodPost, "/api/register", gin.H{
			"username":       name,
			"password":       "password123",
			"franchiseeName": name,
			"location":       "Mesa, AZ",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		return resp["accessToken"].(string)
	}
	owner := register("owner_store")
	other := register("other_store")

	rec, resp := f.do(t, http.MethodPost, "/api/jobs", gin.H{
		"title": "Cashier", "location": "Mesa, AZ", "description": "Front counter", "type": "full-time",
	}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	path := fmt.Sprintf("/api/jobs/%d", int(resp["id"].(float64)))

	rec, _ = f.do(t, http.MethodPatch, path, gin.H{"title": "Taken over"}, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = f.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cashier", resp["title"])
}

func TestUploadResumeRoute(t *testing.T) {
	f := newFixture(t, testConfig(t))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("resume", "cv.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4\n%%EOF\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp["filePath"], nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthMetricsAndHeaders(t *testing.T) {
	f := newFixture(t, testConfig(t))

	rec, resp := f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", resp["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec, _ = f.do(t, http.MethodGet, "/api/jobs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobboard_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, testConfig(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitPerSecond = 2
	f := newFixture(t, cfg)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec, _ := f.do(t, http.MethodPost, "/api/login", gin.H{"username": "nobody", "password": "whatever1"}, "")
		codes = append(codes, rec.Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
	assert.Equal(t, http.StatusUnauthorized, codes[0])
}

func TestNewServer(t *testing.T) {
	cfg := testConfig(t)

	s, err := NewServer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })

	assert.IsType(t, &storage.MemoryStorage{}, s.Store)
	assert.IsType(t, &upload.LocalStore{}, s.Uploads)
	httpServer := s.HTTPServer()
	assert.Equal(t, ":8080", httpServer.Addr)
	assert.Equal(t, 30*time.Second, httpServer.WriteTimeout)
}

func TestNewServer_rejectsDevSecretInRelease(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	cfg.Session.Secret = config.DevSessionSecret

	_, err := NewServer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrDevSecret)
}

func TestNewServer_requiresAllowedOrigin(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowOrigins = nil

	assert.NotPanics(t, func() {
		_, err := NewServer(context.Background(), cfg, zaptest.NewLogger(t))
		assert.ErrorIs(t, err, ErrNoAllowedOrigin)
	})
}

func TestNewServer_unknownDrivers(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "cassandra"
	_, err := NewServer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Session.Store = "memcached"
	_, err = NewServer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
