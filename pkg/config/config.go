package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"atelier/pkg/keymaps"

	"github.com/spf13/viper"
)

const (
	SourceAPI    = "api"
	SourceSample = "sample"
)

// Config holds the application configuration
type Config struct {
	APIURL         string            `mapstructure:"api_url"`
	Source         string            `mapstructure:"source"`
	Storage        string            `mapstructure:"storage"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	Timezone       string            `mapstructure:"timezone"`
	LogFile        string            `mapstructure:"log_file"`
	KeyMap         map[string]string `mapstructure:"keymap"`
	Styles         Styles            `mapstructure:"styles"`
	Server         ServerConfig      `mapstructure:"server"`

	// Path is the file the configuration was read from
	Path string `mapstructure:"-"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `mapstructure:"border_color"`
	AccentColor string `mapstructure:"accent_color"`

	// Text colors
	NormalTextColor   string `mapstructure:"normal_text_color"`
	MutedTextColor    string `mapstructure:"muted_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`

	// Agenda colors
	TodayColor   string `mapstructure:"today_color"`
	OverdueColor string `mapstructure:"overdue_color"`
	TagColor     string `mapstructure:"tag_color"`
}

// ServerConfig configures `atelier serve`
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	AdminEmail    string        `mapstructure:"admin_email"`
	AdminPassword string        `mapstructure:"admin_password"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	RateLimit     int           `mapstructure:"rate_limit"`
}

// Dir is where the config file and local storage live by default
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "atelier"), nil
}

// Load reads the JSON config at configPath, or the default path when empty.
// A missing file is created with the defaults. ATELIER_* environment
// variables override the file, e.g. ATELIER_API_URL or ATELIER_SERVER_ADDR.
func Load(configPath string) (Config, error) {
	configDir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("ATELIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
		// First run: write the defaults so users have something to edit
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return Config{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, fmt.Errorf("writing default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Path = configPath

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("source", SourceAPI)
	v.SetDefault("storage", filepath.Join(configDir, "atelier.db"))
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_file", "")
	for action, keys := range keymaps.GetDefaultKeyMappings() {
		v.SetDefault("keymap."+action, keys)
	}

	v.SetDefault("styles.border_color", "240")
	v.SetDefault("styles.accent_color", "205")
	v.SetDefault("styles.normal_text_color", "252")
	v.SetDefault("styles.muted_text_color", "244")
	v.SetDefault("styles.selected_text_color", "229")
	v.SetDefault("styles.selected_bg_color", "57")
	v.SetDefault("styles.error_color", "9")
	v.SetDefault("styles.today_color", "86")
	v.SetDefault("styles.overdue_color", "203")
	v.SetDefault("styles.tag_color", "4")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.admin_email", "admin@atelier.local")
	v.SetDefault("server.admin_password", "atelier")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", "1h")
	v.SetDefault("server.rate_limit", 120)
}

func (c Config) validate() error {
	switch c.Source {
	case SourceAPI, SourceSample:
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceAPI, SourceSample, c.Source)
	}
	if c.Source == SourceAPI && c.APIURL == "" {
		return errors.New("api_url is required when source is api")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
