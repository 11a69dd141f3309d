package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the document store factory.
const (
	StorageDriverFS     = "fs"
	StorageDriverS3     = "s3"
	StorageDriverMemory = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Reports  ReportsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables event
// forwarding.
type RedisConfig struct {
	Addr                 string
	Password             string
	DB                   int
	EventsChannel        string
	PublishTimeoutMillis int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Service     string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	// BootstrapAccounts lists "username:password:district" entries created at
	// startup when missing. A district of "*" marks the main office.
	BootstrapAccounts []string
}

// StorageConfig selects and configures the document store.
type StorageConfig struct {
	Driver           string
	Dir              string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	RetryDelayMillis int
}

// ReportsConfig holds submission rules that may change without touching the workflow.
type ReportsConfig struct {
	AllowedExtensions []string
	Quarters          []string
	// MinYear and MaxYear bound the reporting year; zero leaves that side open.
	MinYear     int
	MaxYear     int
	MaxUploadMB int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))
	appName := getEnv("APP_NAME", "district-report-portal")
	appEnv := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   appEnv,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:                 getEnvAllowEmpty("REDIS_ADDR", "127.0.0.1:6379"),
			Password:             os.Getenv("REDIS_PASSWORD"),
			DB:                   redisDB,
			EventsChannel:        getEnv("REDIS_EVENTS_CHANNEL", "reports.events"),
			PublishTimeoutMillis: getEnvAsInt("REDIS_PUBLISH_TIMEOUT_MS", 500),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Service:     appName,
			Development: appEnv == "development",
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAccounts:     getEnvAsRawList("AUTH_BOOTSTRAP_ACCOUNTS"),
		},
		Storage: StorageConfig{
			Driver:           strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFS)),
			Dir:              getEnv("STORAGE_DIR", "uploads"),
			S3Bucket:         os.Getenv("STORAGE_S3_BUCKET"),
			S3Region:         getEnv("STORAGE_S3_REGION", "us-east-1"),
			S3Endpoint:       os.Getenv("STORAGE_S3_ENDPOINT"),
			S3AccessKey:      os.Getenv("STORAGE_S3_ACCESS_KEY"),
			S3SecretKey:      os.Getenv("STORAGE_S3_SECRET_KEY"),
			RetryDelayMillis: getEnvAsInt("STORAGE_RETRY_DELAY_MS", 100),
		},
		Reports: ReportsConfig{
			AllowedExtensions: getEnvAsList("REPORT_ALLOWED_EXTENSIONS", []string{"pdf", "doc", "docx", "xls", "xlsx"}),
			Quarters:          getEnvAsList("REPORT_QUARTERS", []string{"Q1", "Q2", "Q3", "Q4"}),
			MinYear:           getEnvAsInt("REPORT_MIN_YEAR", 2000),
			MaxYear:           getEnvAsInt("REPORT_MAX_YEAR", 2100),
			MaxUploadMB:       getEnvAsInt("REPORT_MAX_UPLOAD_MB", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverFS, StorageDriverMemory:
	case StorageDriverS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if len(c.Reports.AllowedExtensions) == 0 {
		return fmt.Errorf("REPORT_ALLOWED_EXTENSIONS must not be empty")
	}
	if c.Redis.Enabled() && c.Redis.PublishTimeoutMillis <= 0 {
		return fmt.Errorf("REDIS_PUBLISH_TIMEOUT_MS must be positive")
	}
	if len(c.Reports.Quarters) == 0 {
		return fmt.Errorf("REPORT_QUARTERS must not be empty")
	}
	if c.Reports.MinYear > 0 && c.Reports.MaxYear > 0 && c.Reports.MinYear > c.Reports.MaxYear {
		return fmt.Errorf("REPORT_MIN_YEAR %d is after REPORT_MAX_YEAR %d", c.Reports.MinYear, c.Reports.MaxYear)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RetryDelay returns the pause before the single storage retry.
func (s StorageConfig) RetryDelay() time.Duration {
	if s.RetryDelayMillis <= 0 {
		return 0
	}
	return time.Duration(s.RetryDelayMillis) * time.Millisecond
}

// Enabled reports whether events should be forwarded to Redis.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// PublishTimeout bounds a single event publish.
func (r RedisConfig) PublishTimeout() time.Duration {
	return time.Duration(r.PublishTimeoutMillis) * time.Millisecond
}

// YearAllowed reports whether year falls inside the configured bounds.
func (r ReportsConfig) YearAllowed(year int) bool {
	if r.MinYear > 0 && year < r.MinYear {
		return false
	}
	if r.MaxYear > 0 && year > r.MaxYear {
		return false
	}
	return true
}

// MaxUploadBytes returns the request body limit for report uploads.
func (r ReportsConfig) MaxUploadBytes() int {
	if r.MaxUploadMB <= 0 {
		return 20 * 1024 * 1024
	}
	return r.MaxUploadMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvAllowEmpty keeps an explicitly empty value instead of the fallback.
func getEnvAllowEmpty(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma separated value, dropping blanks and leading dots.
func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ".")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsRawList splits a comma separated value without touching the parts
// beyond trimming spaces.
func getEnvAsRawList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
