// Package config loads runtime settings for the registration wizard from
// defaults, an optional YAML file, dotenv files and REGWIZARD_ environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides (REGWIZARD_ADDR, ...).
const EnvPrefix = "REGWIZARD"

// Keys understood by the loader. Flags bind to the same names.
const (
	KeyAddr          = "addr"
	KeySubmitDelay   = "submit_delay"
	KeyShutdownGrace = "shutdown_grace"
	KeyLogLevel      = "log_level"
	KeyEndpoint      = "endpoint"
	KeyStepsDir      = "steps_dir"
	KeyLocale        = "locale"
	KeyMessagesFile  = "messages_file"
)

// Defaults applied before any other source.
const (
	DefaultAddr          = ":8080"
	DefaultSubmitDelay   = 2 * time.Second
	DefaultShutdownGrace = 10 * time.Second
	DefaultLogLevel      = "info"
	DefaultEndpoint      = "http://localhost:8080"
)

// Config holds the resolved settings.
type Config struct {
	// Addr is the listen address of the registration server.
	Addr string `mapstructure:"addr"`
	// SubmitDelay is how long POST /registration waits before answering.
	SubmitDelay time.Duration `mapstructure:"submit_delay"`
	// ShutdownGrace bounds graceful shutdown of the server.
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`
	// Endpoint is the base URL the terminal wizard submits to.
	Endpoint string `mapstructure:"endpoint"`
	// StepsDir optionally points at a directory holding registration.yaml
	// that replaces the embedded step definitions.
	StepsDir string `mapstructure:"steps_dir"`
	// Locale selects the message catalog used by renderers.
	Locale string `mapstructure:"locale"`
	// MessagesFile optionally points at a YAML catalog of translations
	// keyed by locale.
	MessagesFile string `mapstructure:"messages_file"`
}

// Option configures the loader.
type Option func(*loaderConfig) error

type loaderConfig struct {
	path   string
	dotenv []string
	viper  *viper.Viper
}

// WithConfigPath reads settings from a YAML file.
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("config: path is required")
		}
		cfg.path = path
		return nil
	}
}

// WithDotEnv loads the named dotenv files into the process environment
// before reading overrides. Missing files are skipped.
func WithDotEnv(files ...string) Option {
	return func(cfg *loaderConfig) error {
		cfg.dotenv = append(cfg.dotenv, files...)
		return nil
	}
}

// WithViper loads through v, so flags already bound to v take precedence.
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		if v == nil {
			return errors.New("config: viper instance is nil")
		}
		cfg.viper = v
		return nil
	}
}

// NewViper returns a viper instance carrying the defaults and environment
// bindings, ready for flag binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeySubmitDelay, DefaultSubmitDelay)
	v.SetDefault(KeyShutdownGrace, DefaultShutdownGrace)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyEndpoint, DefaultEndpoint)
	v.SetDefault(KeyStepsDir, "")
	v.SetDefault(KeyLocale, "")
	v.SetDefault(KeyMessagesFile, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration and validates it.
func Load(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(loaderCfg.dotenv); err != nil {
		return nil, err
	}

	v := loaderCfg.viper
	if v == nil {
		v = NewViper()
	}

	if loaderCfg.path != "" {
		v.SetConfigFile(loaderCfg.path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", loaderCfg.path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv(files []string) error {
	present := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			present = append(present, file)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("config: load dotenv: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Addr = strings.TrimSpace(c.Addr)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.StepsDir = strings.TrimSpace(c.StepsDir)
	c.Locale = strings.TrimSpace(c.Locale)
	c.MessagesFile = strings.TrimSpace(c.MessagesFile)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("submit_delay must not be negative, got %s", c.SubmitDelay)
	}
	if c.ShutdownGrace <= 0 {
		return fmt.Errorf("shutdown_grace must be positive, got %s", c.ShutdownGrace)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute URL", c.Endpoint)
	}
	if c.StepsDir != "" {
		info, err := os.Stat(c.StepsDir)
		if err != nil {
			return fmt.Errorf("steps_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("steps_dir %q is not a directory", c.StepsDir)
		}
	}
	if c.MessagesFile != "" {
		info, err := os.Stat(c.MessagesFile)
		if err != nil {
			return fmt.Errorf("messages_file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("messages_file %q is a directory", c.MessagesFile)
		}
	}
	return nil
}
