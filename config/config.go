// ABOUTME: Application configuration loaded from the environment and an optional .env file
// ABOUTME: Covers OAuth credentials, paging, vCard export/import options, logging and storage paths
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/harperreed/gcard/mapping"
)

// Prefix is prepended to every variable; unprefixed names are accepted as a fallback.
const Prefix = "GCARD"

// AppName names the XDG data directory.
const AppName = "gcard"

// Page size bounds enforced by the People API.
const (
	MaxContactPageSize = 1000
	MaxGroupPageSize   = 1000
)

// Config holds runtime settings.
type Config struct {
	// OAuth
	ClientID          string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret      string `envconfig:"GOOGLE_CLIENT_SECRET"`
	ClientSecretsFile string `envconfig:"CLIENT_SECRETS_FILE"`
	RedirectURL       string `envconfig:"REDIRECT_URL" default:"http://localhost:8080/oauth/callback"`
	TokenPath         string `envconfig:"TOKEN_PATH"`

	// Paging
	PageSize      int64 `envconfig:"PAGE_SIZE" default:"200"`
	GroupPageSize int64 `envconfig:"GROUP_PAGE_SIZE" default:"50"`

	// vCard export
	StarredCategory string `envconfig:"STARRED_CATEGORY" default:""`
	ExportPhoto     bool   `envconfig:"EXPORT_PHOTO" default:"true"`
	UseDefaultPhoto bool   `envconfig:"USE_DEFAULT_PHOTO" default:"false"`
	MapGroups       bool   `envconfig:"MAP_GROUPS" default:"true"`
	MapSystemGroups bool   `envconfig:"MAP_SYSTEM_GROUPS" default:"false"`
	Charset         string `envconfig:"CHARSET" default:"UTF-8"`

	// vCard import
	CreateImportGroup bool `envconfig:"CREATE_IMPORT_GROUP" default:"true"`

	// Logging and storage
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	DBPath    string `envconfig:"DB_PATH"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults derives paths and validates ranges.
func (c *Config) ResolveDefaults() error {
	if c.TokenPath == "" {
		c.TokenPath = filepath.Join(xdg.DataHome, AppName, "google-token.json")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(xdg.DataHome, AppName, "gcard.db")
	}
	if c.PageSize <= 0 || c.PageSize > MaxContactPageSize {
		return fmt.Errorf("PAGE_SIZE must be between 1 and %d, got %d", MaxContactPageSize, c.PageSize)
	}
	if c.GroupPageSize <= 0 || c.GroupPageSize > MaxGroupPageSize {
		return fmt.Errorf("GROUP_PAGE_SIZE must be between 1 and %d, got %d", MaxGroupPageSize, c.GroupPageSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", c.LogFormat)
	}
	if strings.TrimSpace(c.Charset) == "" {
		c.Charset = "UTF-8"
	}
	return nil
}

// ExportOptions converts the export settings for the mapper.
func (c *Config) ExportOptions() mapping.ExportOptions {
	return mapping.ExportOptions{
		MapGroupsToCategory: c.MapGroups,
		MapSystemGroups:     c.MapSystemGroups,
		ExportPhoto:         c.ExportPhoto,
		UseDefaultPhoto:     c.UseDefaultPhoto,
		StarredCategory:     c.StarredCategory,
	}
}
