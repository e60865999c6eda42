package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config models rcadesk.yml.
type Config struct {
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret        string        `yaml:"jwt_secret"`
		TokenTTL         time.Duration `yaml:"token_ttl"`
		AllowActorHeader bool          `yaml:"allow_actor_header"`
	} `yaml:"auth"`
	Assistant struct {
		Model             string `yaml:"model"`
		APIKeyEnv         string `yaml:"api_key_env"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"assistant"`
	Seed struct {
		File string `yaml:"file"`
	} `yaml:"seed"`
	Journal struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"journal"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Dashboard struct {
		UrgentLimit int `yaml:"urgent_limit"`
		RecentLimit int `yaml:"recent_limit"`
	} `yaml:"dashboard"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("config.auth.token_ttl must not be negative")
	}
	if c.Assistant.RequestsPerMinute < 0 {
		return fmt.Errorf("config.assistant.requests_per_minute must not be negative")
	}
	if c.Assistant.APIKeyEnv == "" {
		return fmt.Errorf("config.assistant.api_key_env is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config.log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config.log.format %q must be text or json", c.Log.Format)
	}
	if c.Dashboard.UrgentLimit < 0 || c.Dashboard.RecentLimit < 0 {
		return fmt.Errorf("config.dashboard limits must not be negative")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "rcadesk.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with rcadesk config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	cfg, err := Load(workspace)
	if err != nil {
		if _, statErr := os.Stat(Path(workspace)); errors.Is(statErr, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys absent from
// data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// LoadDotEnv loads <workspace>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(workspace string) error {
	if workspace == "" {
		workspace = "."
	}
	path := filepath.Join(workspace, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// APIKey returns the assistant key from the configured environment variable.
func (c *Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Assistant.APIKeyEnv))
}

const defaultTemplate = `server:
  addr: 127.0.0.1:8080
  base_path: /v0

auth:
  # HS256 secret for bearer tokens; RCADESK_JWT_SECRET overrides it.
  jwt_secret: ""
  token_ttl: 12h
  allow_actor_header: false

assistant:
  model: gemini-2.5-flash
  api_key_env: GEMINI_API_KEY
  requests_per_minute: 10

seed:
  # empty means the built-in fixture
  file: ""

journal:
  enabled: false

log:
  level: info
  format: text

dashboard:
  urgent_limit: 5
  recent_limit: 5
`
