package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:          "test",
		Port:         "8080",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBPassword:   "secure-password",
		DBSSLMode:    "disable",
		RedisURL:     "redis://localhost:6379",
		BlobBackend:  "disk",
		UploadDir:    "/tmp/uploads",
		MaxUploadMiB: 5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid test config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero upload limit", func(c *Config) { c.MaxUploadMiB = 0 }, true},
		{"disk backend without dir", func(c *Config) { c.UploadDir = "" }, true},
		{"gcs backend without bucket", func(c *Config) { c.BlobBackend = "gcs"; c.GCSBucket = "" }, true},
		{"gcs backend with bucket", func(c *Config) { c.BlobBackend = "gcs"; c.GCSBucket = "lumen-images" }, false},
		{"unknown backend", func(c *Config) { c.BlobBackend = "s3" }, true},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"production strong settings", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_MaxUploadBytes(t *testing.T) {
	c := validConfig()
	assert.Equal(t, int64(5*1024*1024), c.MaxUploadBytes())

	c.MaxUploadMiB = 1
	assert.Equal(t, int64(1048576), c.MaxUploadBytes())
}
