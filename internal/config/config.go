// Package config loads runtime settings from the environment (and a .env file when present).
package config

import (
	"strings"
	"time"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the full set of runtime settings.
type Config struct {
	Port         int
	Env          string
	AllowOrigins []string

	StorageDriver string
	DB            DBSettings

	Session SessionSettings
	Email   EmailSettings
	Upload  UploadSettings

	RateLimitPerSecond int
	LogLevel           string
	LogFormat          string
}

// DBSettings mirrors the DB_* environment variables.
type DBSettings struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	UseConnString bool
	ConnString    string
}

// Configured reports whether enough settings exist to reach a database.
func (d DBSettings) Configured() bool {
	if d.UseConnString {
		return d.ConnString != ""
	}
	return d.Host != "" && d.Name != ""
}

// SessionSettings configures cookie sessions.
type SessionSettings struct {
	Secret        string
	TTL           time.Duration
	Store         string
	CookieSecure  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// EmailSettings configures the transactional email sender.
type EmailSettings struct {
	Provider     string
	From         string
	AWSRegion    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// UploadSettings configures resume storage.
type UploadSettings struct {
	Dir       string
	GCSBucket string
	MaxBytes  int64
}

// DefaultAllowOrigin is the CORS origin used when ALLOW_ORIGIN names none.
const DefaultAllowOrigin = "http://localhost:5173"

// DevSessionSecret is used when SESSION_SECRET is unset outside release mode.
const DevSessionSecret = "dev-only-session-secret-change-me"

// Load reads configuration from environment variables.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("ALLOW_ORIGIN", DefaultAllowOrigin)
	v.SetDefault("USE_CONNECTION_STR", false)
	v.SetDefault("SESSION_SECRET", DevSessionSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("EMAIL_FROM", "careers@example.com")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 5)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := &Config{
		Port:         v.GetInt("PORT"),
		Env:          strings.ToLower(v.GetString("APP_ENV")),
		AllowOrigins: allowOrigins(v.GetString("ALLOW_ORIGIN")),
		DB: DBSettings{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USERNAME"),
			Password:      v.GetString("DB_PASSWORD"),
			Name:          v.GetString("DB_DATABASE"),
			UseConnString: v.GetBool("USE_CONNECTION_STR"),
			ConnString:    v.GetString("DB_CONNECTION_STR"),
		},
		Session: SessionSettings{
			Secret:        v.GetString("SESSION_SECRET"),
			TTL:           v.GetDuration("SESSION_TTL"),
			Store:         strings.ToLower(v.GetString("SESSION_STORE")),
			CookieSecure:  v.GetBool("COOKIE_SECURE"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Email: EmailSettings{
			Provider:     strings.ToLower(v.GetString("EMAIL_PROVIDER")),
			From:         v.GetString("EMAIL_FROM"),
			AWSRegion:    v.GetString("AWS_REGION"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
		},
		Upload: UploadSettings{
			Dir:       v.GetString("UPLOAD_DIR"),
			GCSBucket: v.GetString("GCS_BUCKET"),
			MaxBytes:  v.GetInt64("MAX_UPLOAD_MB") << 20,
		},
		RateLimitPerSecond: v.GetInt("RATE_LIMIT_REQUESTS_PER_SECOND"),
		LogLevel:           strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:          strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 5 // ensure rate limit is positive
	}

	cfg.StorageDriver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = StorageMemory
		if cfg.DB.Configured() {
			cfg.StorageDriver = StoragePostgres
		}
	}

	return cfg
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func allowOrigins(s string) []string {
	if origins := splitList(s); len(origins) > 0 {
		return origins
	}
	return []string{DefaultAllowOrigin}
}
