package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// AppConfig is the ambient layer spec.md never mentions: logging, the
// heartbeat supervisor's tunables, the cache sweeper's tunables, and the
// debug/metrics HTTP surface. It is optional — every field has a default and
// a missing file is not an error.
type AppConfig struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat" yaml:"heartbeat"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Debug     DebugConfig     `mapstructure:"debug" yaml:"debug"`
	Resolver  ResolverConfig  `mapstructure:"resolver" yaml:"resolver"`
}

// LoggingConfig controls the internal/logger package.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// HeartbeatConfig overrides the heartbeat supervisor's defaults
// (5s probe interval, 3s connect deadline, 15s eviction timeout).
type HeartbeatConfig struct {
	Interval        time.Duration `mapstructure:"interval" yaml:"interval"`
	ConnectDeadline time.Duration `mapstructure:"connect_deadline" yaml:"connect_deadline"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CacheConfig overrides the cache engine's background sweep interval.
type CacheConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// DebugConfig controls the chi-mounted debug/metrics HTTP side server.
type DebugConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// ResolverConfig configures the etcd-backed Resolver adapter.
type ResolverConfig struct {
	Endpoints   []string      `mapstructure:"endpoints" yaml:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	LeaseTTL    time.Duration `mapstructure:"lease_ttl" yaml:"lease_ttl"`
}

// LoadAppConfig loads AppConfig from file and defaults. When a file is
// found, environment variables (ZRPC_*) override the keys that file sets;
// keys the file does not set keep their defaults and are not read from the
// environment. A missing file at configPath is not an error: the defaults
// are returned and the environment is not consulted.
func LoadAppConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	setupAppViper(v, configPath)

	found, err := readAppConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := DefaultAppConfig()
	if !found {
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	))); err != nil {
		return nil, fmt.Errorf("unmarshal app config: %w", err)
	}

	return cfg, nil
}

func setupAppViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("ZRPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("zrpc")
	v.SetConfigType("yaml")
}

func readAppConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read app config: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zrpc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "zrpc")
}
