package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Consul    ConsulConfig    `json:"consul"`
	Jaeger    JaegerConfig    `json:"jaeger"`
	Log       LogConfig       `json:"log"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Name string `json:"name"` // service name (consul, tracing)
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig describes the MySQL connection pool.
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// ConsulConfig describes the local consul agent.
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig describes the tracing agent.
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

// LogConfig selects logger backend behavior.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // log file path when output=file
}

// AuthConfig drives JWT verification and route-level RBAC.
type AuthConfig struct {
	Enabled   bool   `json:"enabled"`
	JWTSecret string `json:"jwt_secret"`
	Issuer    string `json:"issuer"`
	Audience  string `json:"audience"`

	// PublicPaths are exact request paths served without a token.
	PublicPaths []string `json:"public_paths"`

	// RBAC maps "METHOD /path-prefix" to the roles allowed to call it.
	// A route with no entry only requires authentication.
	RBAC map[string][]string `json:"rbac"`

	// BootstrapAdmin names the one username that is granted the admin role
	// on registration. Empty disables the bootstrap.
	BootstrapAdmin string `json:"bootstrap_admin"`
}

// RateLimitConfig guards the hot read/write endpoints with a token bucket.
type RateLimitConfig struct {
	Enabled    bool     `json:"enabled"`
	Capacity   int64    `json:"capacity"`
	RefillRate int64    `json:"refill_rate"` // tokens per second
	Paths      []string `json:"paths"`       // path prefixes the limiter covers
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig reads the JSON config file, falling back to the development
// defaults when the file does not exist.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig returns the loaded config, or the defaults before LoadConfig ran.
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig is the development setup: local MySQL, local consul/jaeger,
// auth enabled with a throwaway secret, admin-only car mutations.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "rental-service",
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "drivebook",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Auth: AuthConfig{
			Enabled:   true,
			JWTSecret: "dev-secret-change-me",
			Issuer:    "drivebook",
			Audience:  "drivebook",
			PublicPaths: []string{
				"/healthz",
				"/api/users/register",
				"/api/users/login",
			},
			RBAC: map[string][]string{
				"POST /api/cars":   {"admin"},
				"PUT /api/cars":    {"admin"},
				"DELETE /api/cars": {"admin"},
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   100,
			RefillRate: 50,
			Paths:      []string{"/api/reservations"},
		},
	}
}
