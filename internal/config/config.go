package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set, is used verbatim (hosted providers hand out a full DSN).
type DatabaseConfig struct {
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// StorageConfig holds object storage settings. Driver selects the backend:
// "minio" (default) or "s3".
type StorageConfig struct {
	Driver          string
	Endpoint        string
	AccessKey       string
	SecretKey       string
	Bucket          string
	Region          string
	UseSSL          bool
	SignedURLTTLSec int
}

// SignedURLTTL is the validity window of signed view URLs.
func (c StorageConfig) SignedURLTTL() time.Duration {
	return time.Duration(c.SignedURLTTLSec) * time.Second
}

// AuthConfig points at the hosted auth service (GoTrue-compatible REST API).
type AuthConfig struct {
	URL          string
	AnonKey      string
	JWTSecret    string
	ConfirmPath  string
	CookieName   string
	CookieSecure bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	PublicURL     string
	Timezone      string
	MaxUploadSize string
	Database      DatabaseConfig
	Storage       StorageConfig
	Auth          AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() *AppConfig {
	port := getEnv("PORT", "8080")
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:"+port),
		Port:          port,
		PublicURL:     strings.TrimSuffix(getEnv("APP_PUBLIC_URL", "http://localhost:"+port), "/"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),
		MaxUploadSize: getEnv("MAX_UPLOAD_SIZE", "10MB"),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:       getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:       getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:          getEnv("STORAGE_BUCKET", "documents"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:          getEnvBool("STORAGE_USE_SSL", false),
			SignedURLTTLSec: getEnvInt("STORAGE_SIGNED_URL_TTL_SEC", 3600),
		},
		Auth: AuthConfig{
			URL:          strings.TrimSuffix(getEnv("AUTH_URL", ""), "/"),
			AnonKey:      getEnv("AUTH_ANON_KEY", ""),
			JWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
			ConfirmPath:  getEnv("AUTH_CONFIRM_PATH", "/dashboard"),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "sd_session"),
			CookieSecure: getEnvBool("AUTH_COOKIE_SECURE", false),
		},
	}
}

// MaxUploadBytes parses MaxUploadSize ("10MB", "512KB", ...). Invalid or
// non-positive values fall back to 10MB.
func (c *AppConfig) MaxUploadBytes() int64 {
	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return 10 * units.MB
	}
	return size
}

// Location resolves Timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
