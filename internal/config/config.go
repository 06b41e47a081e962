package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	envPort                  = "PORT"
	envBaseURL               = "BASE_URL"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envRequestsPerSecond     = "REQUESTS_PER_SECOND"
	envRequestBurst          = "REQUEST_BURST"
	envStorageBackend        = "STORAGE_BACKEND"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envS3Bucket              = "S3_BUCKET"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
)

const (
	defaultServerPort        = "8080"
	defaultBaseURL           = "http://localhost:8080/"
	defaultShutdownTimeout   = 10 * time.Second
	defaultRequestsPerSecond = 10
	defaultRequestBurst      = 30
	defaultDBHost            = "localhost"
	defaultDBPort            = 5432
	defaultDBName            = "solidservice"
	defaultDBUser            = "solidservice_app"
	defaultDBSSLMode         = "disable"
	defaultDBMaxConns        = 25
	defaultJWTExpiry         = 60 * time.Minute
	minJWTSecretLength       = 32
)

// StorageBackend selects where representations live.
type StorageBackend string

const (
	BackendMemory StorageBackend = "memory"
	BackendS3     StorageBackend = "s3"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port              string
	BaseURL           string
	ShutdownTimeout   time.Duration
	RequestsPerSecond int
	RequestBurst      int
}

type StorageConfig struct {
	Backend         StorageBackend
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// UseDatabaseIndex enables the postgres resource index for
	// existence probes next to the S3 backend.
	UseDatabaseIndex bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// LoadConfig reads the configuration from the environment, applying
// defaults and validating the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv(envPort, defaultServerPort),
			BaseURL:           getEnv(envBaseURL, defaultBaseURL),
			ShutdownTimeout:   getDurationSeconds(envServerShutdownTimeout, defaultShutdownTimeout),
			RequestsPerSecond: getInt(envRequestsPerSecond, defaultRequestsPerSecond),
			RequestBurst:      getInt(envRequestBurst, defaultRequestBurst),
		},
		Storage: StorageConfig{
			Backend:         StorageBackend(getEnv(envStorageBackend, string(BackendMemory))),
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			Bucket:          os.Getenv(envS3Bucket),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getInt(envDBPort, defaultDBPort),
			Name:     getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getInt(envDBMaxConns, defaultDBMaxConns),
		},
		JWT: JWTConfig{
			Secret: os.Getenv(envJWTSecret),
			Expiry: getDurationMinutes(envJWTExpiry, defaultJWTExpiry),
		},
	}
	cfg.Storage.UseDatabaseIndex = cfg.Storage.Backend == BackendS3 && cfg.Database.Password != ""

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("%s must be set", envBaseURL)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("%s must be set", envJWTSecret)
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("%s must be at least %d characters", envJWTSecret, minJWTSecretLength)
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendS3:
		if c.Storage.Region == "" {
			return fmt.Errorf("%s must be set", envAWSRegion)
		}
		if c.Storage.AccessKeyID == "" {
			return fmt.Errorf("%s must be set", envAWSAccessKeyID)
		}
		if c.Storage.SecretAccessKey == "" {
			return fmt.Errorf("%s must be set", envAWSSecretAccessKey)
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%s must be set", envS3Bucket)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDurationSeconds(key string, fallback time.Duration) time.Duration {
	value := getInt(key, 0)
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Second
}

func getDurationMinutes(key string, fallback time.Duration) time.Duration {
	value := getInt(key, 0)
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Minute
}
