package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variable names understood by parseEnv.
const (
	EnvHTTPAddr       = "TASKKEEPER_HTTP_ADDR"
	EnvDatabaseDSN    = "TASKKEEPER_DATABASE_DSN"
	EnvSecretKey      = "TASKKEEPER_SECRET_KEY"
	EnvAccessTTL      = "TASKKEEPER_ACCESS_TOKEN_TTL"
	EnvRefreshTTL     = "TASKKEEPER_REFRESH_TOKEN_TTL"
	EnvLogLevel       = "TASKKEEPER_LOG_LEVEL"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiBaseURL  = "GEMINI_BASE_URL"
	EnvGeminiModel    = "GEMINI_MODEL"
	EnvChatTimeout    = "TASKKEEPER_CHAT_TIMEOUT"
	EnvS3RootUser     = "TASKKEEPER_S3_ROOT_USER"
	EnvS3RootPassword = "TASKKEEPER_S3_ROOT_PASSWORD"
	EnvS3Bucket       = "TASKKEEPER_S3_BUCKET"
	EnvS3Region       = "TASKKEEPER_S3_REGION"
	EnvS3BaseEndpoint = "TASKKEEPER_S3_BASE_ENDPOINT"
)

// parseEnv overlays values from the process environment. Unset or empty
// variables are ignored; durations use time.ParseDuration syntax and a bad
// value panics.
func parseEnv(config *Config) {
	envString(&config.HTTPAddr, EnvHTTPAddr)
	envString(&config.DatabaseDSN, EnvDatabaseDSN)
	envString(&config.SecretKey, EnvSecretKey)
	envString(&config.LogLevel, EnvLogLevel)
	envString(&config.GeminiAPIKey, EnvGeminiAPIKey)
	envString(&config.GeminiBaseURL, EnvGeminiBaseURL)
	envString(&config.GeminiModel, EnvGeminiModel)
	envString(&config.S3RootUser, EnvS3RootUser)
	envString(&config.S3RootPassword, EnvS3RootPassword)
	envString(&config.S3Bucket, EnvS3Bucket)
	envString(&config.S3Region, EnvS3Region)
	envString(&config.S3BaseEndpoint, EnvS3BaseEndpoint)

	envDuration(&config.AccessTokenValidityDuration, EnvAccessTTL)
	envDuration(&config.RefreshTokenValidityDuration, EnvRefreshTTL)
	envDuration(&config.ChatTimeout, EnvChatTimeout)
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}
