package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the typesense-mcp server configuration.
type Config struct {
	Typesense TypesenseConfig `yaml:"typesense"`
	MCP       MCPConfig       `yaml:"mcp"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TypesenseConfig holds search engine connection settings.
type TypesenseConfig struct {
	Host                 string `yaml:"host"`
	Port                 int    `yaml:"port"`
	Protocol             string `yaml:"protocol"` // http, https
	APIKey               string `yaml:"api_key"`
	ConnectionTimeoutSec int    `yaml:"connection_timeout_sec"`
	NumRetries           int    `yaml:"num_retries"`
	RetryIntervalMs      int    `yaml:"retry_interval_ms"`
}

// Timeout returns the per-request timeout.
func (t TypesenseConfig) Timeout() time.Duration {
	return time.Duration(t.ConnectionTimeoutSec) * time.Second
}

// RetryInterval returns the base retry backoff.
func (t TypesenseConfig) RetryInterval() time.Duration {
	return time.Duration(t.RetryIntervalMs) * time.Millisecond
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"` // stdio, http
}

// HTTPConfig holds HTTP server settings, used by the http transport.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig holds the per-key request limiter settings. The limiter
// is disabled when Addrs is empty.
type RateLimitConfig struct {
	Addrs             []string `yaml:"addrs"`
	Password          string   `yaml:"password"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	ReadinessTimeout  int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a store is configured.
func (r RateLimitConfig) Enabled() bool { return len(r.Addrs) > 0 }

// SearchConfig holds search defaults.
type SearchConfig struct {
	// EmbeddingField is the vector field used when alpha derives a vector
	// query and the caller names none.
	EmbeddingField string `yaml:"embedding_field"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates the configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Typesense.Host == "" {
		c.Typesense.Host = "localhost"
	}
	if c.Typesense.Port <= 0 {
		c.Typesense.Port = 8108
	}
	if c.Typesense.Protocol == "" {
		c.Typesense.Protocol = "http"
	}
	if c.Typesense.ConnectionTimeoutSec <= 0 {
		c.Typesense.ConnectionTimeoutSec = 10
	}
	if c.Typesense.NumRetries < 0 {
		c.Typesense.NumRetries = 0
	}
	if c.Typesense.RetryIntervalMs <= 0 {
		c.Typesense.RetryIntervalMs = 100
	}
	if c.MCP.Name == "" {
		c.MCP.Name = "typesense"
	}
	if c.MCP.Transport == "" {
		c.MCP.Transport = TransportStdio
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.RateLimit.ReadinessTimeout <= 0 {
		c.RateLimit.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Typesense.APIKey == "" {
		return fmt.Errorf("typesense.api_key is required")
	}
	if c.Typesense.Port > 65535 {
		return fmt.Errorf("typesense.port must be between 1 and 65535, got %d", c.Typesense.Port)
	}
	switch c.Typesense.Protocol {
	case "http", "https":
	default:
		return fmt.Errorf("typesense.protocol must be \"http\" or \"https\", got %q", c.Typesense.Protocol)
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("mcp.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.MCP.Transport)
	}
	if c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	for i, k := range c.Auth.APIKeys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("auth.api_keys[%d] is empty", i)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
