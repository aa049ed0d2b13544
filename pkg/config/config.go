package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string `mapstructure:"PORT"`
	BindAddress string `mapstructure:"BIND_ADDRESS"`
	Env         string `mapstructure:"ENV"`

	// Tournament API
	APIBaseURL              string `mapstructure:"API_BASE_URL"`
	APITimeout              string `mapstructure:"API_TIMEOUT"`
	APIRateLimit            int    `mapstructure:"API_RATE_LIMIT"`
	CircuitBreakerThreshold int    `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	CircuitBreakerTimeout   string `mapstructure:"CIRCUIT_BREAKER_TIMEOUT"`

	// Leaderboard polling
	RefreshInterval string `mapstructure:"REFRESH_INTERVAL"`

	// Token persistence
	TokenStore  string `mapstructure:"TOKEN_STORE"` // "file", "redis", "database"
	TokenFile   string `mapstructure:"TOKEN_FILE"`
	TokenKey    string `mapstructure:"TOKEN_KEY"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

const (
	defaultAPITimeout      = 10 * time.Second
	defaultBreakerTimeout  = 30 * time.Second
	defaultRefreshInterval = 30 * time.Second
)

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	// Set defaults
	v.SetDefault("PORT", "3000")
	v.SetDefault("BIND_ADDRESS", "127.0.0.1")
	v.SetDefault("ENV", "development")
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("API_TIMEOUT", defaultAPITimeout.String())
	v.SetDefault("API_RATE_LIMIT", 10) // requests per second
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	v.SetDefault("CIRCUIT_BREAKER_TIMEOUT", defaultBreakerTimeout.String())
	v.SetDefault("REFRESH_INTERVAL", defaultRefreshInterval.String())
	v.SetDefault("TOKEN_STORE", "file")
	v.SetDefault("TOKEN_FILE", defaultTokenFile())
	v.SetDefault("TOKEN_KEY", "token")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DATABASE_URL", "file:scoreboard.db")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_FORMAT", "")

	// Read from environment
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	switch c.TokenStore {
	case "file", "redis", "database":
	default:
		return fmt.Errorf("unsupported TOKEN_STORE %q (want file, redis or database)", c.TokenStore)
	}
	if c.TokenKey == "" {
		return fmt.Errorf("TOKEN_KEY must not be empty")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ListenAddr returns the host:port the local front end binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.BindAddress, c.Port)
}

func (c *Config) APITimeoutDuration() time.Duration {
	return parseDuration("API_TIMEOUT", c.APITimeout, defaultAPITimeout)
}

func (c *Config) CircuitBreakerTimeoutDuration() time.Duration {
	return parseDuration("CIRCUIT_BREAKER_TIMEOUT", c.CircuitBreakerTimeout, defaultBreakerTimeout)
}

func (c *Config) RefreshIntervalDuration() time.Duration {
	return parseDuration("REFRESH_INTERVAL", c.RefreshInterval, defaultRefreshInterval)
}

func parseDuration(key, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.Warnf("Invalid %s %q, using default %s", key, value, fallback)
		return fallback
	}
	return d
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".golf-scoreboard", "token")
	}
	return filepath.Join(home, ".golf-scoreboard", "token")
}
