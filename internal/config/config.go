// Package config loads tracker settings from defaults, an optional config
// file, TRACKER_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/baiirun/tracker/internal/db"
	"github.com/baiirun/tracker/internal/history"
)

const envPrefix = "TRACKER"

// Keys accepted in config files and, upper-cased with dots replaced by
// underscores, as TRACKER_ environment variables.
const (
	KeyDBPath          = "db.path"
	KeyServerAddr      = "server.addr"
	KeyHistoryPolicy   = "history.policy"
	KeyHistoryCapacity = "history.capacity"
	KeyIDsStart        = "ids.start"
)

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
	IDs     IDsConfig     `mapstructure:"ids"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// HistoryConfig selects the access-history policy. Capacity only applies
// to the ring policy.
type HistoryConfig struct {
	Policy   history.Policy `mapstructure:"policy"`
	Capacity int            `mapstructure:"capacity"`
}

type IDsConfig struct {
	Start int64 `mapstructure:"start"`
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	dbPath, err := db.DefaultPath()
	if err != nil {
		dbPath = "tracker.db"
	}
	v.SetDefault(KeyDBPath, dbPath)
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyHistoryPolicy, string(history.PolicyRecency))
	v.SetDefault(KeyHistoryCapacity, 10)
	v.SetDefault(KeyIDsStart, 1)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file into v when file is non-empty, then decodes and
// validates the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DB.Path) == "" {
		errs = append(errs, errors.New("db.path must be set"))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must be set"))
	}
	if !c.History.Policy.IsValid() {
		errs = append(errs, fmt.Errorf("history.policy %q is not one of %q, %q",
			c.History.Policy, history.PolicyRecency, history.PolicyRing))
	}
	if c.History.Policy == history.PolicyRing && c.History.Capacity < 1 {
		errs = append(errs, fmt.Errorf("history.capacity must be at least 1, got %d", c.History.Capacity))
	}
	if c.IDs.Start < 1 {
		errs = append(errs, fmt.Errorf("ids.start must be at least 1, got %d", c.IDs.Start))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
