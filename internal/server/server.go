package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/auth"
	"github.com/Jogatev/chebeneleven-sub000/internal/config"
	"github.com/Jogatev/chebeneleven-sub000/internal/database"
	"github.com/Jogatev/chebeneleven-sub000/internal/notify"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/upload"
)

// ErrDevSecret is returned when a release build still uses the development session secret.
var ErrDevSecret = errors.New("SESSION_SECRET must be set outside dev mode")

// ErrNoAllowedOrigin is returned when no CORS origin is configured.
var ErrNoAllowedOrigin = errors.New("ALLOW_ORIGIN must name at least one origin")

// Deps are the collaborators the routes are built on.
type Deps struct {
	Store    storage.Storage
	Sessions *auth.SessionManager
	Uploads  upload.ResumeStore
	Mailer   notify.Sender
}

// Server holds the configuration and the collaborators every handler shares.
type Server struct {
	Config *config.Config
	Log    *zap.Logger
	Deps

	closers []io.Closer
}

// NewServer opens every backend selected by cfg.
func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if !cfg.IsDev() && cfg.Session.Secret == config.DevSessionSecret {
		return nil, ErrDevSecret
	}
	if len(cfg.AllowOrigins) == 0 {
		return nil, ErrNoAllowedOrigin
	}

	s := &Server{Config: cfg, Log: log}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}
	s.Store = store
	s.closers = append(s.closers, store)

	sessionStore, err := openSessionStore(ctx, cfg.Session)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.closers = append(s.closers, sessionStore)
	s.Sessions = auth.NewSessionManager(
		sessionStore,
		auth.NewTokenSigner(cfg.Session.Secret),
		cfg.Session.TTL,
		cfg.Session.CookieSecure,
	)

	uploads, err := openResumeStore(ctx, cfg.Upload)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Uploads = uploads
	if closer, ok := uploads.(io.Closer); ok {
		s.closers = append(s.closers, closer)
	}

	mailer, err := notify.NewSender(ctx, cfg.Email, log)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure email sender: %w", err)
	}
	s.Mailer = mailer

	log.Info("server configured",
		zap.String("storage", cfg.StorageDriver),
		zap.String("session_store", cfg.Session.Store),
		zap.String("email_provider", cfg.Email.Provider),
		zap.Bool("gcs_uploads", cfg.Upload.GCSBucket != ""),
	)
	return s, nil
}

// NewServerWithDeps builds a Server around already constructed collaborators.
func NewServerWithDeps(cfg *config.Config, log *zap.Logger, deps Deps) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Config: cfg, Log: log, Deps: deps}
}

// HTTPServer wraps the routes in an http.Server with the service timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Config.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Close releases every backend opened by NewServer, newest first.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemoryStorage(), nil
	case config.StoragePostgres:
		db, err := database.NewDBInstance(database.ConfigFromSettings(cfg.DB))
		if err != nil {
			return nil, fmt.Errorf("database failed to initialize: %w", err)
		}
		return storage.NewPostgresStorage(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

type closableSessionStore interface {
	auth.SessionStore
	io.Closer
}

func openSessionStore(ctx context.Context, s config.SessionSettings) (closableSessionStore, error) {
	switch s.Store {
	case "", "memory":
		return auth.NewInMemorySessionStore(), nil
	case "redis":
		store, err := auth.DialRedisSessionStore(ctx, s.RedisAddr, s.RedisPassword, s.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", s.Store)
	}
}

func openResumeStore(ctx context.Context, s config.UploadSettings) (upload.ResumeStore, error) {
	if s.GCSBucket != "" {
		return upload.NewCloudStore(ctx, s.GCSBucket)
	}
	return upload.NewLocalStore(s.Dir)
}
