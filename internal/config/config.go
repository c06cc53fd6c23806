package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	UI       UIConfig
	Report   ReportConfig
}

// TelegramConfig holds bot transport settings.
type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol   string `mapstructure:"currency_symbol"`
	WishlistPageSize int    `mapstructure:"wishlist_page_size"`
	HistoryPageSize  int    `mapstructure:"history_page_size"`
}

// ReportConfig holds report artifact settings.
type ReportConfig struct {
	WorkDir      string        `mapstructure:"work_dir"`
	CleanupDelay time.Duration `mapstructure:"cleanup_delay"`
}

// Load reads configuration from file and env. Env var overrides use prefix FINBOT_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 10*time.Second)
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "finbot", "finbot.db"))
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.wishlist_page_size", 5)
	v.SetDefault("ui.history_page_size", 10)
	v.SetDefault("report.work_dir", os.TempDir())
	v.SetDefault("report.cleanup_delay", 60*time.Second)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("FINBOT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "finbot"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FINBOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
