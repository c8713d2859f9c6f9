package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[app]
log_level = "debug"

[storage]
bucket = "files"
project = "my-space"

[session]
secret = "s3cret"

[mail]
host = "smtp.example.com"
sender = "noreply@example.com"

[otp]
ttl = "10m"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, testConfig)
	t.Setenv("CACHE_TYPE", "redis")

	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--config", path, "--host.port", "9090"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9090, cfg.Host.Port)
	assert.Equal(t, "files", cfg.Storage.Bucket)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 720*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes())
	assert.Equal(t, int64(2<<30), cfg.QuotaBytes())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.toml")}))

	_, err := Load(flags)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, testConfig)

	flags := Flags()
	require.NoError(t, flags.Parse([]string{"-c", path}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"log level", func(c *Config) { c.App.LogLevel = "loud" }},
		{"port", func(c *Config) { c.Host.Port = 0 }},
		{"ssl cert", func(c *Config) { c.Host.SSL.Enabled = true }},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"bucket", func(c *Config) { c.Storage.Bucket = "" }},
		{"upload size", func(c *Config) { c.Upload.MaxSize = 0 }},
		{"session secret", func(c *Config) { c.Session.Secret = "" }},
		{"mail", func(c *Config) { c.Mail.Host = "" }},
		{"cache type", func(c *Config) { c.Cache.Type = "memcached" }},
		{"turnstile", func(c *Config) { c.Turnstile.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *cfg
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
