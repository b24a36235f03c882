// Package config loads videostore settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath names the config file when no path is given.
	EnvConfigPath = "VIDEOSTORE_CONFIG"

	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// StoreConfig locates and shapes the embedding store.
type StoreConfig struct {
	Dir     string `yaml:"dir"`
	Backend string `yaml:"backend"`
	TopK    int    `yaml:"topK" split_words:"true"`
}

// LogConfig selects the log level and output format ("text" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TwelveLabsConfig configures the embedding provider. The API key also
// honours TL_API_KEY.
type TwelveLabsConfig struct {
	APIKey  string        `yaml:"apiKey" envconfig:"TL_API_KEY"`
	BaseURL string        `yaml:"baseURL" split_words:"true"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the root configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Log        LogConfig        `yaml:"log"`
	TwelveLabs TwelveLabsConfig `yaml:"twelvelabs"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:     "embedding_store",
			Backend: BackendFiles,
			TopK:    5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		TwelveLabs: TwelveLabsConfig{
			BaseURL: "https://api.twelvelabs.io",
			Timeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// VIDEOSTORE_CONFIG variable is consulted and, failing that, only defaults
// and the environment apply. A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := envconfig.Process("VIDEOSTORE_STORE", &cfg.Store); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	if err := envconfig.Process("VIDEOSTORE_LOG", &cfg.Log); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	if err := envconfig.Process("VIDEOSTORE_TWELVELABS", &cfg.TwelveLabs); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Store.Dir) == "" {
		errs = append(errs, errors.New("store.dir is empty"))
	}
	switch c.Store.Backend {
	case BackendFiles, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of %s, %s", c.Store.Backend, BackendFiles, BackendSQLite))
	}
	if c.Store.TopK <= 0 {
		errs = append(errs, fmt.Errorf("store.topK must be positive, got %d", c.Store.TopK))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if c.TwelveLabs.Timeout < 0 {
		errs = append(errs, fmt.Errorf("twelvelabs.timeout must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
