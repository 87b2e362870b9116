package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all SEM37 frontend configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Stats   StatsConfig   `yaml:"stats"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`

	// DevMode exposes full usage statistics.
	DevMode bool `yaml:"dev_mode"`
}

// ServerConfig configures the HTTP listener and per-browser workspaces.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	GinMode       string        `yaml:"gin_mode"`
	RateLimit     float64       `yaml:"rate_limit"` // submissions per second per client IP
	RateBurst     int           `yaml:"rate_burst"`
	WorkspaceTTL  time.Duration `yaml:"workspace_ttl"`
	MaxWorkspaces int           `yaml:"max_workspaces"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

// BackendConfig points at the SEO analysis API.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures the optional login flow and where tokens are kept.
type AuthConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Store   string        `yaml:"store"` // file, sqlite, or postgres
	DSN     string        `yaml:"dsn"`
	DataDir string        `yaml:"data_dir"`
	SealKey string        `yaml:"seal_key"` // optional hex key, 32 bytes
}

type StatsConfig struct {
	DataDir      string `yaml:"data_dir"`
	RetainMonths int    `yaml:"retain_months"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type UIConfig struct {
	Theme string `yaml:"theme"` // studio or light
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8082",
			GinMode:       "release",
			RateLimit:     2,
			RateBurst:     5,
			WorkspaceTTL:  2 * time.Hour,
			MaxWorkspaces: 1000,
		},
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			BaseURL: "http://localhost:5001",
			Timeout: 10 * time.Second,
			Store:   "file",
			DataDir: "data",
		},
		Stats: StatsConfig{
			DataDir:      "data",
			RetainMonths: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "studio",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, env
// files and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	loadEnvFiles()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles prefers .env.development and falls back to .env. Variables
// already present in the environment are not overwritten.
func loadEnvFiles() {
	if err := godotenv.Load(".env.development"); err != nil {
		_ = godotenv.Load()
	}
}

func (c *Config) applyEnv() error {
	if v, ok := EnvString("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := EnvString("GIN_MODE"); ok {
		c.Server.GinMode = v
	}
	if v, ok := EnvString("API_BASE_URL"); ok {
		c.Backend.BaseURL = v
	}
	if v, ok := EnvString("AUTH_BASE_URL"); ok {
		c.Auth.BaseURL = v
	}
	if v, ok := EnvString("TOKEN_STORE"); ok {
		c.Auth.Store = v
	}
	if v, ok := EnvString("TOKEN_STORE_DSN"); ok {
		c.Auth.DSN = v
	}
	if v, ok := EnvString("TOKEN_SEAL_KEY"); ok {
		c.Auth.SealKey = v
	}
	if v, ok := EnvString("DATA_DIR"); ok {
		c.Auth.DataDir = v
		c.Stats.DataDir = v
	}
	if v, ok := EnvString("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := EnvString("UI_THEME"); ok {
		c.UI.Theme = v
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"AUTH_ENABLED", &c.Auth.Enabled},
		{"LOG_JSON", &c.Logging.JSON},
		{"DEV_MODE", &c.DevMode},
		{"SECURE_COOKIES", &c.Server.SecureCookies},
	}
	for _, b := range bools {
		v, ok, err := EnvBool(b.key)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", b.key, err)
		}
		if ok {
			*b.dst = v
		}
	}

	if v, ok, err := EnvDuration("REQUEST_TIMEOUT"); err != nil {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	} else if ok {
		c.Backend.Timeout = v
	}
	if v, ok, err := EnvFloat("RATE_LIMIT"); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT: %w", err)
	} else if ok {
		c.Server.RateLimit = v
	}
	if v, ok, err := EnvInt("RATE_BURST"); err != nil {
		return fmt.Errorf("invalid RATE_BURST: %w", err)
	} else if ok {
		c.Server.RateBurst = v
	}
	return nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateBaseURL("backend base URL", c.Backend.BaseURL); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Server.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive")
	}
	if c.Server.MaxWorkspaces <= 0 {
		return fmt.Errorf("max workspaces must be positive")
	}
	if c.Server.WorkspaceTTL <= 0 {
		return fmt.Errorf("workspace ttl must be positive")
	}

	switch c.Auth.Store {
	case "file", "sqlite":
		if c.Auth.DataDir == "" && c.Auth.DSN == "" {
			return fmt.Errorf("token store %q needs a data dir", c.Auth.Store)
		}
	case "postgres":
		if c.Auth.DSN == "" {
			return fmt.Errorf("token store postgres needs a dsn")
		}
	default:
		return fmt.Errorf("token store must be file, sqlite, or postgres")
	}
	if c.Auth.Enabled {
		if err := validateBaseURL("auth base URL", c.Auth.BaseURL); err != nil {
			return err
		}
		if c.Auth.Timeout <= 0 {
			return fmt.Errorf("auth timeout must be positive")
		}
	}
	if c.Auth.SealKey != "" && len(c.Auth.SealKey) != 64 {
		return fmt.Errorf("seal key must be 64 hex characters")
	}

	if c.Stats.DataDir == "" {
		return fmt.Errorf("stats data dir cannot be empty")
	}
	if c.UI.Theme != "studio" && c.UI.Theme != "light" {
		return fmt.Errorf("ui theme must be studio or light")
	}
	return nil
}

func validateBaseURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func EnvInt(key string) (int, bool, error) {
	v, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	return n, err == nil, err
}

func EnvFloat(key string) (float64, bool, error) {
	v, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil, err
}

func EnvBool(key string) (bool, bool, error) {
	v, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil, err
}

// EnvDuration accepts Go durations ("45s") or a bare number of seconds.
func EnvDuration(key string) (time.Duration, bool, error) {
	v, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true, nil
	}
	d, err := time.ParseDuration(v)
	return d, err == nil, err
}
