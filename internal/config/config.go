// Package config loads neorecipe configuration.
//
// Values come from three layers, later ones winning:
//  1. DefaultConfig
//  2. a YAML file, or a TOML file when the path ends in ".toml"
//  3. environment variables (NEORECIPE_NEO4J_URI, PORT, LOG_LEVEL, ...)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Neo4j  Neo4jConfig  `yaml:"neo4j" toml:"neo4j"`
	Server ServerConfig `yaml:"server" toml:"server"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// Neo4jConfig holds the connection settings of the graph store.
type Neo4jConfig struct {
	URI      string `yaml:"uri" toml:"uri"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	// Database selects the target database; empty uses the server default.
	Database     string        `yaml:"database" toml:"database"`
	QueryTimeout time.Duration `yaml:"query_timeout" toml:"query_timeout"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address string `yaml:"address" toml:"address"`
	Port    int    `yaml:"port" toml:"port"`

	// RateLimit is in requests per second.
	RateLimit      float64 `yaml:"rate_limit" toml:"rate_limit"`
	RateLimitBurst int     `yaml:"rate_limit_burst" toml:"rate_limit_burst"`

	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// LogConfig selects the logger format ("text" or "json") and level.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:          "neo4j://localhost:7687",
			Username:     "neo4j",
			QueryTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port:            8080,
			RateLimit:       100,
			RateLimitBurst:  200,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path, if any, and applies environment overrides.
// An empty path yields DefaultConfig plus the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Neo4j.URI = getEnv("NEORECIPE_NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.Username = getEnv("NEORECIPE_NEO4J_USERNAME", c.Neo4j.Username)
	c.Neo4j.Password = getEnv("NEORECIPE_NEO4J_PASSWORD", c.Neo4j.Password)
	c.Neo4j.Database = getEnv("NEORECIPE_NEO4J_DATABASE", c.Neo4j.Database)
	c.Neo4j.QueryTimeout = getEnvAsDuration("NEORECIPE_QUERY_TIMEOUT", c.Neo4j.QueryTimeout)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// applyDefaults fills zero values a partial file left behind.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = def.Server.RateLimit
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = def.Server.RateLimitBurst
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Neo4j.URI) == "" {
		errs = append(errs, errors.New("neo4j.uri is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Neo4j.QueryTimeout < 0 {
		errs = append(errs, errors.New("neo4j.query_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
