package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	FrontendURL string

	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	AssumeRoleARN      string

	MediaPath      string
	DatabasePath   string
	OutputS3Bucket string

	MaxFileSizeMB   int64
	MaxPromptTokens int

	GenerationTimeout time.Duration
	PollInterval      time.Duration
	MaxPollAttempts   int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. AWS credentials are required; everything else has
// a workable default.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "3000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AssumeRoleARN:      os.Getenv("ASSUME_ROLE_ARN"),

		MediaPath:      getEnv("MEDIA_STORAGE_PATH", "./media"),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/app.db"),
		OutputS3Bucket: getEnv("OUTPUT_S3_BUCKET", "nova-reel-output-videos"),

		MaxFileSizeMB:   int64(getEnvInt("MAX_FILE_SIZE_MB", 10)),
		MaxPromptTokens: getEnvInt("MAX_PROMPT_TOKENS", 512),

		GenerationTimeout: time.Millisecond * time.Duration(getEnvInt("GENERATION_TIMEOUT_MS", 300000)),
		PollInterval:      time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 15)),
		MaxPollAttempts:   getEnvInt("MAX_POLL_ATTEMPTS", 120),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.AWSAccessKeyID == "" {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID is required")
	}
	if cfg.AWSSecretAccessKey == "" {
		return nil, fmt.Errorf("AWS_SECRET_ACCESS_KEY is required")
	}

	return cfg, nil
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
