package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vincentbai/browsetrace-recorder/internal/emitter"
)

// EnvPrefix namespaces environment overrides, e.g. BROWSETRACE_SERVER_ADDRESS.
const EnvPrefix = "BROWSETRACE"

type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Recorder RecorderConfig `mapstructure:"recorder" yaml:"recorder"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

type RecorderConfig struct {
	// DefaultFormat is used when a script request names no format.
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Server --
	v.SetDefault("server.address", "127.0.0.1:8123")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 4<<20)

	// -- Database --
	v.SetDefault("database.path", filepath.Join(DefaultDataDir(), "recordings.db"))

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "browsetrace-recorder")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Recorder --
	v.SetDefault("recorder.default_format", emitter.Selenium)
}

// DefaultDataDir is the platform-specific application data directory.
func DefaultDataDir() string {
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDirectory, "Library", "Application Support", "BrowserTrace")
	case "windows":
		return filepath.Join(homeDirectory, "AppData", "Roaming", "BrowserTrace")
	default: // linux and others
		return filepath.Join(homeDirectory, ".local", "share", "BrowserTrace")
	}
}

// Load reads configFile (or ./config.yaml when empty and present), applies
// BROWSETRACE_* environment overrides and validates the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}
	return NewConfigFromViper(v)
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns the configuration built from defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, ok := emitter.Lookup(c.Recorder.DefaultFormat); !ok {
		return fmt.Errorf("recorder.default_format %q is not a known format", c.Recorder.DefaultFormat)
	}
	return nil
}
