// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Render   RenderConfig   `mapstructure:"render"`
}

// BotConfig holds Discord client configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
	// AppID is the application id used for slash-command registration.
	AppID string `mapstructure:"app_id"`
	// GuildID optionally scopes command registration to one guild,
	// which propagates instantly and is useful while developing.
	GuildID string `mapstructure:"guild_id"`
	Version string `mapstructure:"version"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// LedgerConfig holds points ledger persistence configuration.
type LedgerConfig struct {
	// FlushInterval is how often dirty guild ledgers are written out.
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// RenderConfig holds image renderer configuration.
type RenderConfig struct {
	// FontPath and LightFontPath point at the regular and light weights
	// of a monospace typeface. Missing faces halt the process at boot.
	FontPath      string `mapstructure:"font_path"`
	LightFontPath string `mapstructure:"light_font_path"`
	// ScratchDir receives generated images. Files older than ScratchTTL
	// are removed by the sweeper every SweepInterval.
	ScratchDir    string        `mapstructure:"scratch_dir"`
	ScratchTTL    time.Duration `mapstructure:"scratch_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// MaxConcurrent caps simultaneous renders; rendering is CPU-bound.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, RENDER_SCRATCH_DIR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.version", "dev")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "levelsbot")
	v.SetDefault("database.name", "levelsbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Ledger defaults
	v.SetDefault("ledger.flush_interval", "5s")

	// Render defaults
	v.SetDefault("render.font_path", "assets/type/typeface.otf")
	v.SetDefault("render.light_font_path", "assets/type/light.otf")
	v.SetDefault("render.scratch_dir", "savedata/temp")
	v.SetDefault("render.scratch_ttl", "1h")
	v.SetDefault("render.sweep_interval", "10m")
	v.SetDefault("render.max_concurrent", 2)
}
