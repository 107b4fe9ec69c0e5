package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Zotero
		Calibre
		Poll
		Sync
		Journal
		Log
	}

	Zotero struct {
		APIKey      string
		LibraryID   string
		LibraryType string // "user" or "group"
		APIURL      string
		Timeout     time.Duration
	}
	Calibre struct {
		DatabasePath string
		LinkScheme   string // URL scheme of deep links, "calibre"
		LinkLocator  string // Locator function in deep links, "epubcfi"
	}
	Poll struct {
		MaxAttempts int
		Interval    time.Duration
	}
	Sync struct {
		AttachmentTitle string // Placeholder title the Zotero plugin renames
		AbortOnTimeout  bool   // Stop the whole run when a parent item is not found
	}
	Journal struct {
		DatabasePath string // Empty disables the run journal
	}
	Log struct {
		File       string // Empty logs to stderr only
		MaxSizeMB  int
		MaxBackups int
	}
)

// NewConfig reads configuration from the environment.
func NewConfig() *Config {
	return Load(NewViper())
}

// NewViper returns a viper instance with defaults and environment lookup set
// up. Callers may bind command-line flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyZoteroLibraryType, DefaultZoteroLibraryType)
	v.SetDefault(KeyZoteroAPIURL, DefaultZoteroAPIURL)
	v.SetDefault(KeyZoteroTimeout, DefaultZoteroTimeout.String())
	v.SetDefault(KeyLinkScheme, DefaultLinkScheme)
	v.SetDefault(KeyLinkLocator, DefaultLinkLocator)
	v.SetDefault(KeyPollMaxAttempts, DefaultPollMaxAttempts)
	v.SetDefault(KeyPollInterval, DefaultPollInterval.String())
	v.SetDefault(KeyAttachmentTitle, DefaultAttachmentTitle)
	v.SetDefault(KeyAbortOnResolutionTimeout, false)
	v.SetDefault(KeyStateDatabasePath, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, DefaultLogMaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, DefaultLogMaxBackups)

	return v
}

// LoadFile reads an optional configuration file (TOML, YAML or JSON) into v.
// Environment variables and bound flags still take precedence.
func LoadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from v.
func Load(v *viper.Viper) *Config {
	return &Config{
		Zotero: Zotero{
			APIKey:      v.GetString(KeyZoteroAPIKey),
			LibraryID:   v.GetString(KeyZoteroLibraryID),
			LibraryType: strings.ToLower(v.GetString(KeyZoteroLibraryType)),
			APIURL:      v.GetString(KeyZoteroAPIURL),
			Timeout:     getSeconds(v, KeyZoteroTimeout),
		},
		Calibre: Calibre{
			DatabasePath: v.GetString(KeyCalibreDatabasePath),
			LinkScheme:   v.GetString(KeyLinkScheme),
			LinkLocator:  v.GetString(KeyLinkLocator),
		},
		Poll: Poll{
			MaxAttempts: v.GetInt(KeyPollMaxAttempts),
			Interval:    getSeconds(v, KeyPollInterval),
		},
		Sync: Sync{
			AttachmentTitle: v.GetString(KeyAttachmentTitle),
			AbortOnTimeout:  v.GetBool(KeyAbortOnResolutionTimeout),
		},
		Journal: Journal{
			DatabasePath: v.GetString(KeyStateDatabasePath),
		},
		Log: Log{
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
		},
	}
}

// getSeconds reads a duration. A bare number is taken as seconds, so
// POLL_INTERVAL=5 means five seconds rather than five nanoseconds.
func getSeconds(v *viper.Viper, key string) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return v.GetDuration(key)
}

// ValidateZotero checks the settings needed to talk to Zotero.
func (c *Config) ValidateZotero() error {
	var errs []error
	if c.Zotero.APIKey == "" {
		errs = append(errs, errors.New("zotero API key is not set (ZOTERO_API_KEY or --api-key)"))
	}
	if c.Zotero.LibraryID == "" {
		errs = append(errs, errors.New("zotero library id is not set (ZOTERO_LIBRARY_ID or --library-id)"))
	}
	if c.Zotero.LibraryType != "user" && c.Zotero.LibraryType != "group" {
		errs = append(errs, fmt.Errorf("zotero library type must be \"user\" or \"group\", got %q", c.Zotero.LibraryType))
	}
	return errors.Join(errs...)
}

// ValidateCalibre checks the settings needed to read the Calibre library.
func (c *Config) ValidateCalibre() error {
	if c.Calibre.DatabasePath == "" {
		return errors.New("calibre database path is not set (CALIBRE_DATABASE_PATH or --calibre-db)")
	}
	return nil
}

// Validate checks everything a sync run needs.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ValidateZotero(); err != nil {
		errs = append(errs, err)
	}
	if err := c.ValidateCalibre(); err != nil {
		errs = append(errs, err)
	}
	if c.Poll.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("poll max attempts must be positive, got %d", c.Poll.MaxAttempts))
	}
	if c.Poll.Interval < 0 {
		errs = append(errs, fmt.Errorf("poll interval must not be negative, got %s", c.Poll.Interval))
	}
	return errors.Join(errs...)
}
