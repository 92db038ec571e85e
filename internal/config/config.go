// Package config loads and validates curator configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Proxy       ProxyConfig       `mapstructure:"proxy"`
	Extract     ExtractConfig     `mapstructure:"extract"`
	Headless    HeadlessConfig    `mapstructure:"headless"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	DB          DBConfig          `mapstructure:"db"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// ProxyConfig points at the CORS read-through proxy.
type ProxyConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ExtractConfig bounds record normalization.
type ExtractConfig struct {
	BuildTimeoutSeconds int `mapstructure:"build_timeout_seconds"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	BodyThreshold int  `mapstructure:"body_threshold"`
}

// PersistenceConfig selects where records live.
type PersistenceConfig struct {
	// Mode is "memory", "postgres", or "remote".
	Mode           string `mapstructure:"mode"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// Username and Password open a backend session in remote mode. Leaving
	// both empty runs the service as a guest against local stores.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ArchiveConfig sets where archived images land.
type ArchiveConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Persistence modes.
const (
	PersistenceMemory   = "memory"
	PersistencePostgres = "postgres"
	PersistenceRemote   = "remote"
)

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("proxy.base_url", "https://api.allorigins.win/get")
	v.SetDefault("proxy.timeout_seconds", 15)
	v.SetDefault("proxy.user_agent", "curator/0.1")
	v.SetDefault("extract.build_timeout_seconds", 30)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("headless.body_threshold", 2048)
	v.SetDefault("persistence.mode", PersistenceMemory)
	v.SetDefault("persistence.timeout_seconds", 30)
	v.SetDefault("archive.base_dir", "saved_images")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Proxy.TimeoutSeconds <= 0 {
		return fmt.Errorf("proxy.timeout_seconds must be > 0")
	}
	if c.Extract.BuildTimeoutSeconds <= 0 {
		return fmt.Errorf("extract.build_timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	switch c.Persistence.Mode {
	case PersistenceMemory:
	case PersistencePostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when persistence.mode is postgres")
		}
	case PersistenceRemote:
		if c.Persistence.BaseURL == "" {
			return fmt.Errorf("persistence.base_url must be set when persistence.mode is remote")
		}
		if (c.Persistence.Username == "") != (c.Persistence.Password == "") {
			return fmt.Errorf("persistence.username and persistence.password must be set together")
		}
	default:
		return fmt.Errorf("unknown persistence.mode %q", c.Persistence.Mode)
	}
	return nil
}

// ProxyTimeout converts the proxy timeout into a duration.
func (c Config) ProxyTimeout() time.Duration {
	return time.Duration(c.Proxy.TimeoutSeconds) * time.Second
}

// BuildTimeout converts the normalization budget into a duration.
func (c Config) BuildTimeout() time.Duration {
	return time.Duration(c.Extract.BuildTimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation budget into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// PersistenceTimeout converts the backend call budget into a duration.
func (c Config) PersistenceTimeout() time.Duration {
	return time.Duration(c.Persistence.TimeoutSeconds) * time.Second
}
