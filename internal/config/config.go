package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory and .strreg/
const FileName = "strreg.toml"

// EnvPrefix prefixes every environment override, e.g. STRREG_SERVER_PORT.
const EnvPrefix = "STRREG"

// Config represents the complete strreg configuration
type Config struct {
	Version int           `toml:"version" mapstructure:"version" json:"version"`
	Server  ServerConfig  `toml:"server" mapstructure:"server" json:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage" json:"storage"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging" json:"logging"`
	Seed    SeedConfig    `toml:"seed" mapstructure:"seed" json:"seed"`
}

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	Host                string `toml:"host" mapstructure:"host" json:"host"`
	Port                int    `toml:"port" mapstructure:"port" json:"port"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds" mapstructure:"read_timeout_seconds" json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds" mapstructure:"write_timeout_seconds" json:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `toml:"idle_timeout_seconds" mapstructure:"idle_timeout_seconds" json:"idle_timeout_seconds"`
	MaxBodyBytes        int64  `toml:"max_body_bytes" mapstructure:"max_body_bytes" json:"max_body_bytes"`
	CORSOrigin          string `toml:"cors_origin" mapstructure:"cors_origin" json:"cors_origin"`
}

// StorageConfig selects the record store
type StorageConfig struct {
	Backend string `toml:"backend" mapstructure:"backend" json:"backend"` // "memory" | "sqlite"
	DSN     string `toml:"dsn" mapstructure:"dsn" json:"dsn"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `toml:"format" mapstructure:"format" json:"format"`
	Level  string `toml:"level" mapstructure:"level" json:"level"`
}

// SeedConfig names an optional file of values loaded at startup
type SeedConfig struct {
	File string `toml:"file" mapstructure:"file" json:"file"`
}

// Storage backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                3000,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
			IdleTimeoutSeconds:  60,
			MaxBodyBytes:        1 << 20,
			CORSOrigin:          "*",
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			DSN:     ":memory:",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from path, or from strreg.toml in the
// working directory or .strreg/ when path is empty. A missing default file
// is not an error. Environment variables override file values; PORT is
// honoured for the listen port.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		v.AddConfigPath(".strreg")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout_seconds", d.Server.ReadTimeoutSeconds)
	v.SetDefault("server.write_timeout_seconds", d.Server.WriteTimeoutSeconds)
	v.SetDefault("server.idle_timeout_seconds", d.Server.IdleTimeoutSeconds)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("seed.file", d.Seed.File)
}

// Save writes the configuration as TOML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return &ConfigError{Field: "server.max_body_bytes", Message: "must be positive"}
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", c.Storage.Backend)}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
