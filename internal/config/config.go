// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers for the leaderboard.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Bot         BotConfig         `mapstructure:"bot"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Whitelist   WhitelistConfig   `mapstructure:"whitelist"`
	Game        GameConfig        `mapstructure:"game"`
	Advisory    AdvisoryConfig    `mapstructure:"advisory"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
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

// StorageConfig selects where the leaderboard is persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Key    string `mapstructure:"key"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GameConfig holds the tunable game constants.
type GameConfig struct {
	InitialScore   int           `mapstructure:"initial_score"`
	TreasureReward int           `mapstructure:"treasure_reward"`
	TrapPenalty    int           `mapstructure:"trap_penalty"`
	EmptyPenalty   int           `mapstructure:"empty_penalty"`
	HintCost       int           `mapstructure:"hint_cost"`
	MaxRounds      int           `mapstructure:"max_rounds"`
	MaxChests      int           `mapstructure:"max_chests"`
	RevealDelay    time.Duration `mapstructure:"reveal_delay"`
}

// AdvisoryConfig holds the text generation settings.
// An empty APIKey disables the remote generator; local phrases are used instead.
type AdvisoryConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LeaderboardConfig holds leaderboard settings.
type LeaderboardConfig struct {
	Limit      int    `mapstructure:"limit"`
	NameMaxLen int    `mapstructure:"name_max_len"`
	Timezone   string `mapstructure:"timezone"`
	DateFormat string `mapstructure:"date_format"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Enabled reports whether a remote text generator is configured.
func (a *AdvisoryConfig) Enabled() bool {
	return a.APIKey != "" && a.Endpoint != ""
}

// Location returns the configured timezone, falling back to UTC.
func (l *LeaderboardConfig) Location() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

	// e.g. BOT_TOKEN, DATABASE_HOST, ADVISORY_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Registered so AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("bot.token", "")
	v.SetDefault("database.password", "")
	v.SetDefault("advisory.api_key", "")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "treasure")
	v.SetDefault("database.name", "treasure")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Storage defaults
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.key", "treasure_chest_leaderboard")

	// Game defaults
	v.SetDefault("game.initial_score", 100)
	v.SetDefault("game.treasure_reward", 100)
	v.SetDefault("game.trap_penalty", 50)
	v.SetDefault("game.empty_penalty", 10)
	v.SetDefault("game.hint_cost", 20)
	v.SetDefault("game.max_rounds", 5)
	v.SetDefault("game.max_chests", 9)
	v.SetDefault("game.reveal_delay", "1500ms")

	// Advisory defaults
	v.SetDefault("advisory.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("advisory.model", "gemini-2.0-flash")
	v.SetDefault("advisory.timeout", "8s")

	// Leaderboard defaults
	v.SetDefault("leaderboard.limit", 50)
	v.SetDefault("leaderboard.name_max_len", 12)
	v.SetDefault("leaderboard.date_format", "2006-01-02")
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
