package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MAIL", "PASSWORD", "SKILLOGS_BASE_URL", "SKILLOGS_ORIGIN", "SKILLOGS_LANGUAGE",
		"CACHE_FILE", "VALIDATION_TIME", "INFER_ANSWERS", "HTTP_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL", "student@example.com")
	t.Setenv("PASSWORD", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultOrigin, cfg.Origin)
	assert.Equal(t, DefaultCache, cfg.CacheFile)
	assert.Equal(t, 30, cfg.Time)
	assert.False(t, cfg.InferAnswers)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "student@example.com", cfg.Email)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL", "a@b.c")
	t.Setenv("PASSWORD", "p")
	t.Setenv("SKILLOGS_BASE_URL", "http://localhost:8080/")
	t.Setenv("VALIDATION_TIME", "250")
	t.Setenv("INFER_ANSWERS", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 250, cfg.Time)
	assert.True(t, cfg.InferAnswers)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestFromEnv_MissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL", "a@b.c")

	_, err := FromEnv()
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "PASSWORD is not set")

	clearEnv(t)
	t.Setenv("PASSWORD", "p")
	_, err = FromEnv()
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "MAIL is not set")
}

func TestFromEnv_BadNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL", "a@b.c")
	t.Setenv("PASSWORD", "p")
	t.Setenv("VALIDATION_TIME", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_TIME")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("MAIL")
	os.Unsetenv("PASSWORD")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MAIL=file@example.com\nPASSWORD=from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file@example.com", cfg.Email)
	assert.Equal(t, "from-file", cfg.Password)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Email, cfg.Password = "a", "b"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.BaseURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Time = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Password = ""
	assert.Error(t, bad.Validate())
}
