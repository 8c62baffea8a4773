package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv(EnvHTTPAddr, ":6060")
	t.Setenv(EnvGeminiAPIKey, "gemini-key")
	t.Setenv(EnvGeminiBaseURL, "http://llm.local")
	t.Setenv(EnvAccessTTL, "90s")
	t.Setenv(EnvChatTimeout, "5s")
	t.Setenv(EnvS3Bucket, "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":6060", cfg.HTTPAddr)
	assert.Equal(t, "gemini-key", cfg.GeminiAPIKey)
	assert.Equal(t, "http://llm.local", cfg.GeminiBaseURL)
	assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.Equal(t, "", cfg.S3Bucket, "empty variables are ignored")
	assert.True(t, cfg.ChatEnabled())
}

func Test_parseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv(EnvRefreshTTL, "forever")

	require.Panics(t, func() { parseEnv(&Config{}) })
}
