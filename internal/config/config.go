// Package config loads bookkeeper settings from a YAML file, a .env file and
// BOOKKEEPER_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix   = "BOOKKEEPER"
	DefaultFile = "bookkeeper.yaml"

	ModeDebug   = "debug"
	ModeRelease = "release"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Client   ClientConfig   `yaml:"client" mapstructure:"client"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Mode string `yaml:"mode" mapstructure:"mode"` // "debug" or "release"
}

type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// ClientConfig is used by the CLI and TUI when talking to a running server.
type ClientConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Company string `yaml:"company,omitempty" mapstructure:"company"`
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8888", Mode: ModeRelease},
		Database: DatabaseConfig{Path: "bookkeeper.db"},
		Log:      LogConfig{Level: "info"},
		Client:   ClientConfig{URL: "http://localhost:8888"},
	}
}

// Load builds a Config. An empty path looks for bookkeeper.yaml in the
// working directory and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("client.url", d.Client.URL)
	v.SetDefault("client.company", d.Client.Company)
}

func (c *Config) Validate() error {
	if c.Server.Mode != ModeDebug && c.Server.Mode != ModeRelease {
		return fmt.Errorf("server.mode must be %q or %q, got %q", ModeDebug, ModeRelease, c.Server.Mode)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
