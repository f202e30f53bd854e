package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxRequestBytes is the largest request body accepted by the API (50MB).
const DefaultMaxRequestBytes int64 = 50 * 1024 * 1024

// Storage backends for the outbound artifact area.
const (
	BackendLocal = "local"
	BackendMinIO = "minio"
)

// DatabaseConfig holds PostgreSQL settings for the artifact registry.
// The registry is disabled when Host is empty.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database has been configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig describes the inbound staging area and the outbound artifact area.
type StorageConfig struct {
	UploadDir         string
	OutputDir         string
	Backend           string
	AllowedExtensions []string
	MaxRequestBytes   int64
}

// LimitsConfig configures the token bucket in front of the transformation endpoints.
// A zero RateLimitRPS disables throttling.
type LimitsConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated once from environment variables and treated as read-only afterwards.
type AppConfig struct {
	AppHost     string
	Port        string
	Timezone    string
	LogLevel    string
	CORSOrigins string
	Storage     StorageConfig
	Limits      LimitsConfig
	Database    DatabaseConfig
	MinIO       MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Storage: StorageConfig{
			UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
			OutputDir:         getEnv("OUTPUT_DIR", "outputs"),
			Backend:           strings.ToLower(getEnv("STORAGE_BACKEND", BackendLocal)),
			AllowedExtensions: getEnvList("ALLOWED_EXTENSIONS", []string{"pdf"}),
			MaxRequestBytes:   getEnvInt64("MAX_REQUEST_BYTES", DefaultMaxRequestBytes),
		},
		Limits: LimitsConfig{
			RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// Location resolves the configured time zone, falling back to UTC.
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

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks and lower-casing entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
