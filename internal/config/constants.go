package config

import "time"

// Configuration keys. Each key is also read from the upper-cased environment
// variable of the same name.
const (
	KeyZoteroAPIKey      = "zotero_api_key"
	KeyZoteroLibraryID   = "zotero_library_id"
	KeyZoteroLibraryType = "zotero_library_type"
	KeyZoteroAPIURL      = "zotero_api_url"
	KeyZoteroTimeout     = "zotero_timeout"

	KeyCalibreDatabasePath = "calibre_database_path"
	KeyLinkScheme          = "link_scheme"
	KeyLinkLocator         = "link_locator"

	KeyPollMaxAttempts = "poll_max_attempts"
	KeyPollInterval    = "poll_interval"

	KeyAttachmentTitle          = "attachment_title"
	KeyAbortOnResolutionTimeout = "abort_on_resolution_timeout"

	KeyStateDatabasePath = "state_database_path"

	KeyLogFile       = "log_file"
	KeyLogMaxSizeMB  = "log_max_size_mb"
	KeyLogMaxBackups = "log_max_backups"
)

const (
	DefaultZoteroAPIURL      = "https://api.zotero.org"
	DefaultZoteroLibraryType = "user"
	DefaultZoteroTimeout     = 30 * time.Second

	DefaultLinkScheme  = "calibre"
	DefaultLinkLocator = "epubcfi"

	DefaultPollMaxAttempts = 12
	DefaultPollInterval    = 5 * time.Second

	DefaultAttachmentTitle = "ChangeMe.epub"

	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
)
