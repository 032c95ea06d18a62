// Package config loads and saves the TOML configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all pmx configuration.
type Config struct {
	General        GeneralConfig        `toml:"general"`
	Store          StoreConfig          `toml:"store"`
	LLM            LLMConfig            `toml:"llm"`
	Server         ServerConfig         `toml:"server"`
	Appearance     AppearanceConfig     `toml:"appearance"`
	GoogleCalendar GoogleCalendarConfig `toml:"google_calendar"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Owner           string `toml:"owner"`
	AutosaveDelayMS int    `toml:"autosave_delay_ms"`
}

// StoreConfig selects the project store.
type StoreConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path,omitempty"`
	DSN    string `toml:"dsn,omitempty"`
}

// LLMConfig holds generator settings.
type LLMConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// GoogleCalendarConfig holds calendar sync settings.
type GoogleCalendarConfig struct {
	Calendar        string `toml:"calendar"`
	CredentialsFile string `toml:"credentials_file,omitempty"`
	TokenFile       string `toml:"token_file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			AutosaveDelayMS: 1500,
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		LLM: LLMConfig{
			Model: "gemini-2.5-flash",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		GoogleCalendar: GoogleCalendarConfig{
			Calendar: "PMX",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pmx")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pmx")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pmx")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "pmx")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetAPIKey returns the generator API key from env var or config, in that order.
func GetAPIKey(cfg Config) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return cfg.LLM.APIKey
}

// GetDSN returns the postgres DSN from DATABASE_URL or config.
func GetDSN(cfg Config) string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return cfg.Store.DSN
}

// GetOwner returns the session owner from PMX_OWNER, config, or the OS user.
func GetOwner(cfg Config) string {
	if o := os.Getenv("PMX_OWNER"); o != "" {
		return o
	}
	if cfg.General.Owner != "" {
		return cfg.General.Owner
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

// GetDBPath returns the sqlite file path.
func GetDBPath(cfg Config) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return filepath.Join(DataDir(), "pmx.db")
}

// GetAddr returns the listen address; PORT replaces the configured port.
func GetAddr(cfg Config) string {
	addr := cfg.Server.Addr
	if addr == "" {
		addr = DefaultConfig().Server.Addr
	}
	if port := os.Getenv("PORT"); port != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = ""
		}
		return net.JoinHostPort(host, port)
	}
	return addr
}

// AutosaveDelay returns the debounce period.
func AutosaveDelay(cfg Config) time.Duration {
	if cfg.General.AutosaveDelayMS <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(cfg.General.AutosaveDelayMS) * time.Millisecond
}

// GetCredentialsFile returns the Google OAuth client credentials path.
func GetCredentialsFile(cfg Config) string {
	if cfg.GoogleCalendar.CredentialsFile != "" {
		return cfg.GoogleCalendar.CredentialsFile
	}
	return filepath.Join(ConfigDir(), "google_credentials.json")
}

// GetTokenFile returns the saved Google OAuth token path.
func GetTokenFile(cfg Config) string {
	if cfg.GoogleCalendar.TokenFile != "" {
		return cfg.GoogleCalendar.TokenFile
	}
	return filepath.Join(ConfigDir(), "google_token.json")
}
