package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	EncryptionSecret   string `env:"ENCRYPTION_SECRET"`
	RSAPrivateKeyPath  string `env:"RSA_PRIVATE_KEY_PATH"`
	RSAPublicKeyPath   string `env:"RSA_PUBLIC_KEY_PATH"`
	DefaultExpiryHours int    `env:"DEFAULT_EXPIRY_HOURS" envDefault:"24"`
	MaxExpiryHours     int    `env:"MAX_EXPIRY_HOURS" envDefault:"168"`
	BaseURL            string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) DefaultExpiry() time.Duration {
	return time.Duration(c.DefaultExpiryHours) * time.Hour
}

func (c *Config) MaxExpiry() time.Duration {
	return time.Duration(c.MaxExpiryHours) * time.Hour
}

// ShareURL returns the doctor-facing URL for a share token
func (c *Config) ShareURL(tokenID string) string {
	return fmt.Sprintf("%s/api/sharing/access/%s", strings.TrimSuffix(c.BaseURL, "/"), tokenID)
}

func (c *Config) Validate(isProduction bool) error {
	if c.DefaultExpiryHours < 1 {
		return fmt.Errorf("DEFAULT_EXPIRY_HOURS must be at least 1")
	}
	if c.MaxExpiryHours < c.DefaultExpiryHours {
		return fmt.Errorf("MAX_EXPIRY_HOURS must be >= DEFAULT_EXPIRY_HOURS")
	}

	if isProduction {
		if err := validateSecret("ENCRYPTION_SECRET", c.EncryptionSecret); err != nil {
			return err
		}
		if c.RSAPrivateKeyPath == "" {
			log.Warn().Msg("RSA_PRIVATE_KEY_PATH is empty in production: share tokens will use an ephemeral key pair and will not survive restarts")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
