package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HOLLOW_PROXY_URL
const EnvPrefix = "HOLLOW"

// AppConfig is the runtime configuration read from config.yaml
type AppConfig struct {
	Display DisplayConfig `mapstructure:"display"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Levels  LevelsConfig  `mapstructure:"levels"`
	Economy EconomyConfig `mapstructure:"economy"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type DisplayConfig struct {
	ScreenWidth  int    `mapstructure:"screen_width"`
	ScreenHeight int    `mapstructure:"screen_height"`
	Scale        int    `mapstructure:"scale"`
	Title        string `mapstructure:"title"`
}

type TimerConfig struct {
	DurationSeconds  float64 `mapstructure:"duration_seconds"`
	WarningThreshold float64 `mapstructure:"warning_threshold"`
}

type LevelsConfig struct {
	MaxLevel int `mapstructure:"max_level"`
}

type EconomyConfig struct {
	Enabled  bool             `mapstructure:"enabled"`
	PlayerID string           `mapstructure:"player_id"`
	Timeout  time.Duration    `mapstructure:"timeout"`
	Prices   map[string]int64 `mapstructure:"prices"`
	Rewards  map[string]int64 `mapstructure:"rewards"`
}

type ProxyConfig struct {
	URL          string        `mapstructure:"url"`
	Listen       string        `mapstructure:"listen"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
	BitcoinURL   string        `mapstructure:"bitcoin_url"`
	BitcoinUser  string        `mapstructure:"bitcoin_user"`
	BitcoinPass  string        `mapstructure:"bitcoin_pass"`
	LNDURL       string        `mapstructure:"lnd_url"`
	LNDMacaroon  string        `mapstructure:"lnd_macaroon"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	AppName string `mapstructure:"app_name"`
}

type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("display.screen_width", 640)
	v.SetDefault("display.screen_height", 400)
	v.SetDefault("display.scale", 2)
	v.SetDefault("display.title", "Hollow House")

	v.SetDefault("timer.duration_seconds", 1500.0)
	v.SetDefault("timer.warning_threshold", 60.0)

	v.SetDefault("levels.max_level", 7)

	v.SetDefault("economy.enabled", true)
	v.SetDefault("economy.player_id", "guest")
	v.SetDefault("economy.timeout", 3*time.Second)

	v.SetDefault("proxy.url", "http://localhost:3001")
	v.SetDefault("proxy.listen", ":3001")
	v.SetDefault("proxy.allow_origins", []string{"http://localhost:5173", "http://localhost:3000", "http://127.0.0.1:5173"})
	v.SetDefault("proxy.bitcoin_url", "http://127.0.0.1:18443")
	v.SetDefault("proxy.bitcoin_user", "bitcoin")
	v.SetDefault("proxy.bitcoin_pass", "bitcoin")
	v.SetDefault("proxy.lnd_url", "https://127.0.0.1:8080")
	v.SetDefault("proxy.timeout", 5*time.Second)

	v.SetDefault("storage.app_name", "hollowhouse")

	v.SetDefault("log.development", false)
	v.SetDefault("log.level", "")
}

// LoadAppConfig reads config.yaml from path (if present) and applies
// HOLLOW_* environment overrides on top of the defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	v := viper.New()
	SetDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
