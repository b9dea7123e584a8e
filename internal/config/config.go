package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Data directory for the persistence database
	// Default: ~/.local/share/lastgram
	DataDir string

	// IANA time zone used to render timestamps in replies
	Timezone string

	// Telegram bot credentials
	Telegram TelegramConfig

	// Last.fm API credentials
	LastFM LastFMConfig

	// Spotify API credentials
	Spotify SpotifyConfig
}

// TelegramConfig holds Telegram specific configuration
type TelegramConfig struct {
	Token string
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey    string
	APISecret string
}

// SpotifyConfig holds Spotify specific configuration
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("timezone", "America/Sao_Paulo")

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables (LASTGRAM_TELEGRAM_TOKEN, ...)
	v.SetEnvPrefix("LASTGRAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		DataDir:  v.GetString("data_dir"),
		Timezone: v.GetString("timezone"),
		Telegram: TelegramConfig{
			Token: v.GetString("telegram.token"),
		},
		LastFM: LastFMConfig{
			APIKey:    v.GetString("lastfm.api_key"),
			APISecret: v.GetString("lastfm.api_secret"),
		},
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
		},
	}

	return cfg, nil
}

// Validate checks that all five required credentials are present.
// The returned error names every missing one.
func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.Token == "" {
		missing = append(missing, "telegram.token")
	}
	if c.LastFM.APIKey == "" {
		missing = append(missing, "lastfm.api_key")
	}
	if c.LastFM.APISecret == "" {
		missing = append(missing, "lastfm.api_secret")
	}
	if c.Spotify.ClientID == "" {
		missing = append(missing, "spotify.client_id")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "spotify.client_secret")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "lastgram")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}
