package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.API.UploadTimeout)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.API.RetryDelay)
	assert.Equal(t, 1.5, cfg.API.BackoffFactor)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, BackendMock, cfg.Backend)
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docverify.yaml")
	yamlBody := `
backend: remote
api:
  base_url: http://analysis.internal:9000
  max_retries: 5
upload:
  allowed_extensions: [".pdf"]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DOCVERIFY_API_MAX_RETRIES", "2")
	t.Setenv("DOCVERIFY_API_TIMEOUT", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRemote, cfg.Backend)
	assert.Equal(t, "http://analysis.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{".pdf"}, cfg.Upload.AllowedExtensions)
	// untouched values keep their defaults
	assert.Equal(t, 30*time.Second, cfg.API.UploadTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "grpc" }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"shrinking backoff", func(c *Config) { c.API.BackoffFactor = 0.5 }},
		{"zero max size", func(c *Config) { c.Upload.MaxFileSize = 0 }},
		{"no extensions", func(c *Config) { c.Upload.AllowedExtensions = nil }},
		{"no signing key", func(c *Config) { c.Auth.JWTSigningKey = "" }},
		{"inverted mock delay", func(c *Config) { c.Mock.MinDelay = time.Second; c.Mock.MaxDelay = 0 }},
		{"bad trusted proxy", func(c *Config) { c.RateLimit.TrustedProxies = []string{"10.0.0.0/33"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestProxyPrefixes(t *testing.T) {
	rl := RateLimit{TrustedProxies: []string{"10.1.2.3", "192.168.7.9/16", "::ffff:172.16.0.1"}}
	prefixes, err := rl.ProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.1.2.3/32", prefixes[0].String())
	assert.Equal(t, "192.168.0.0/16", prefixes[1].String())
	assert.Equal(t, "172.16.0.1/32", prefixes[2].String())

	_, err = RateLimit{TrustedProxies: []string{"proxy.internal"}}.ProxyPrefixes()
	assert.Error(t, err)
}
