package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gravadigital/navidad-api/internal/domain/roster"
)

// DefaultRoster is the participant list used when ROSTER is not set.
var DefaultRoster = []string{
	"Ángel", "Félix", "Goyo", "Toñi", "Luis", "José", "Pepe", "Lucio", "Antonio", "Virgilio",
}

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port        string
		GinMode     string
		Environment string
		LogLevel    string
	}

	Storage struct {
		Type string
	}

	Voting struct {
		Roster         []string
		EmailDomain    string
		SharedPassword string
	}

	Admin struct {
		User     string
		Password string
	}

	JWT struct {
		Secret string
		TTL    time.Duration
	}

	MinIO struct {
		Endpoint    string
		AccessKey   string
		SecretKey   string
		Bucket      string
		Region      string
		UseSSL      bool
		URLLifetime time.Duration
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "navidad")
	config.DB.Password = getEnv("DB_PASSWORD", "navidad_password")
	config.DB.Name = getEnv("DB_NAME", "navidad_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.Environment = getEnv("ENVIRONMENT", "development")
	config.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	config.Storage.Type = getEnv("STORAGE_TYPE", "postgres")

	config.Voting.Roster = getEnvAsList("ROSTER", DefaultRoster)
	config.Voting.EmailDomain = getEnv("EMAIL_DOMAIN", "navidad-votes.com")
	config.Voting.SharedPassword = getEnv("SHARED_PASSWORD", "")

	config.Admin.User = getEnv("ADMIN_USER", "")
	config.Admin.Password = getEnv("ADMIN_PASSWORD", "")

	config.JWT.Secret = getEnv("JWT_SECRET", "")
	config.JWT.TTL = getEnvAsDuration("JWT_TTL", 12*time.Hour)

	config.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", "")
	config.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", "")
	config.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", "")
	config.MinIO.Bucket = getEnv("MINIO_BUCKET", "navidad-options")
	config.MinIO.Region = getEnv("MINIO_REGION", "us-east-1")
	config.MinIO.UseSSL = getEnvAsBool("MINIO_USE_SSL", false)
	config.MinIO.URLLifetime = getEnvAsDuration("IMAGE_URL_TTL", time.Hour)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	return config
}

// Validate checks the settings the voting core cannot run without
func (c *Config) Validate() error {
	var errs []error

	if _, err := roster.New(c.Voting.Roster); err != nil {
		errs = append(errs, fmt.Errorf("invalid roster: %w", err))
	}
	if strings.TrimSpace(c.Voting.EmailDomain) == "" {
		errs = append(errs, errors.New("EMAIL_DOMAIN cannot be empty"))
	}
	if c.Admin.User == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_USER and ADMIN_PASSWORD are required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Storage.Type {
	case "postgres":
	case "memory":
		if c.Voting.SharedPassword == "" {
			errs = append(errs, errors.New("SHARED_PASSWORD is required for memory storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// MinIOEnabled reports whether option images are served from object storage
func (c *Config) MinIOEnabled() bool {
	return c.MinIO.Endpoint != ""
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// SplitList splits a comma-separated setting, dropping empty entries
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if list := SplitList(value); len(list) > 0 {
			return list
		}
	}
	return append([]string(nil), defaultValue...)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90m") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
