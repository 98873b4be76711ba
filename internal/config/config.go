package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"botgate/internal/logger"
)

// Config represents the application configuration
type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	JWT        JWTConfig        `yaml:"jwt"`
	Auth       AuthConfig       `yaml:"auth"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    logger.Config    `yaml:"logging"`
}

// AppConfig represents application configuration
type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

// BackendConfig represents the trading bot backend configuration. The base
// URL is injected into the client at construction; nothing reads it
// ambiently at request time.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`

	// Timeout tiers per operation family. Zero values fall back to the
	// defaults in DefaultBackendTimeouts.
	HealthTimeout time.Duration `yaml:"health_timeout"` // health checks
	ReadTimeout   time.Duration `yaml:"read_timeout"`   // status, logs
	WriteTimeout  time.Duration `yaml:"write_timeout"`  // lifecycle writes, evaluation
	LongTimeout   time.Duration `yaml:"long_timeout"`   // import, simulation, retraining
}

// DefaultBackendTimeouts mirrors the tiers observed in production: reads
// are cheap, training-adjacent operations are long-running.
var DefaultBackendTimeouts = BackendConfig{
	HealthTimeout: 5 * time.Second,
	ReadTimeout:   10 * time.Second,
	WriteTimeout:  30 * time.Second,
	LongTimeout:   60 * time.Second,
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	SecretKey string        `yaml:"secret_key"`
	Duration  time.Duration `yaml:"duration"`
}

// AuthConfig provisions the dashboard operator account. The password is
// stored as a bcrypt hash, never in the clear.
type AuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// MonitoringConfig represents monitoring configuration
type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPath    string `yaml:"prometheus_path"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second"`
	Burst             int  `yaml:"burst"`
}

// Load loads configuration from a YAML file, then applies environment
// overrides. A .env file next to the process is honored when present.
func Load(filename string) (*Config, error) {
	// Missing .env is not an error; environment may be set by the host.
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv(NewEnvManager(""))
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnv overlays environment variables onto the file configuration.
func (c *Config) applyEnv(env *EnvManager) {
	c.Server.Port = env.GetInt("server_port", c.Server.Port)
	c.Server.Host = env.GetString("server_host", c.Server.Host)
	c.Backend.BaseURL = env.GetString("backend_url", c.Backend.BaseURL)
	c.JWT.SecretKey = env.GetString("jwt_secret", c.JWT.SecretKey)
	c.JWT.Duration = env.GetDuration("jwt_duration", c.JWT.Duration)
	c.Auth.Username = env.GetString("auth_username", c.Auth.Username)
	c.Auth.PasswordHash = env.GetString("auth_password_hash", c.Auth.PasswordHash)
	c.Logging.Level = env.GetString("log_level", c.Logging.Level)
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8080"
	}
	if c.Backend.HealthTimeout == 0 {
		c.Backend.HealthTimeout = DefaultBackendTimeouts.HealthTimeout
	}
	if c.Backend.ReadTimeout == 0 {
		c.Backend.ReadTimeout = DefaultBackendTimeouts.ReadTimeout
	}
	if c.Backend.WriteTimeout == 0 {
		c.Backend.WriteTimeout = DefaultBackendTimeouts.WriteTimeout
	}
	if c.Backend.LongTimeout == 0 {
		c.Backend.LongTimeout = DefaultBackendTimeouts.LongTimeout
	}
	if c.JWT.Duration == 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.Monitoring.PrometheusPath == "" {
		c.Monitoring.PrometheusPath = "/metrics"
	}
	if c.Logging.Level == "" {
		c.Logging = logger.DefaultConfig
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt secret_key is required")
	}
	return nil
}
