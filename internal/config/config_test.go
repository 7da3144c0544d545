package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:            "8420",
		Env:             "development",
		SessionTTLHours: 24,
		BcryptCost:      12,
		S3Bucket:        "bucketlist-photos",
		S3SecretKey:     "minioadmin",
		DBPassword:      "password",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid development config", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT"},
		{"zero session ttl", func(c *Config) { c.SessionTTLHours = 0 }, "SESSION_TTL_HOURS"},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 3 }, "BCRYPT_COST"},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 32 }, "BCRYPT_COST"},
		{"missing bucket", func(c *Config) { c.S3Bucket = "" }, "S3_BUCKET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProductionHardening(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"default db password rejected", func(c *Config) {}, "DB_PASSWORD"},
		{"default s3 secret rejected", func(c *Config) {
			c.DBPassword = "str0ng-and-l0ng"
		}, "S3_SECRET_KEY"},
		{"weak bcrypt cost rejected", func(c *Config) {
			c.DBPassword = "str0ng-and-l0ng"
			c.S3SecretKey = "real-secret"
			c.BcryptCost = 10
		}, "BCRYPT_COST"},
		{"hardened config passes", func(c *Config) {
			c.DBPassword = "str0ng-and-l0ng"
			c.S3SecretKey = "real-secret"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Env = "production"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
