package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "user", cfg.Zotero.LibraryType)
	assert.Equal(t, "https://api.zotero.org", cfg.Zotero.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Zotero.Timeout)
	assert.Equal(t, "calibre", cfg.Calibre.LinkScheme)
	assert.Equal(t, "epubcfi", cfg.Calibre.LinkLocator)
	assert.Equal(t, 12, cfg.Poll.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "ChangeMe.epub", cfg.Sync.AttachmentTitle)
	assert.False(t, cfg.Sync.AbortOnTimeout)
	assert.Equal(t, "", cfg.Journal.DatabasePath)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("ZOTERO_API_KEY", "secret")
	t.Setenv("ZOTERO_LIBRARY_ID", "12345")
	t.Setenv("ZOTERO_LIBRARY_TYPE", "Group")
	t.Setenv("CALIBRE_DATABASE_PATH", "/library/metadata.db")
	t.Setenv("POLL_MAX_ATTEMPTS", "3")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("ABORT_ON_RESOLUTION_TIMEOUT", "true")
	t.Setenv("STATE_DATABASE_PATH", "./journal.db")

	cfg := NewConfig()

	assert.Equal(t, "secret", cfg.Zotero.APIKey)
	assert.Equal(t, "12345", cfg.Zotero.LibraryID)
	assert.Equal(t, "group", cfg.Zotero.LibraryType)
	assert.Equal(t, "/library/metadata.db", cfg.Calibre.DatabasePath)
	assert.Equal(t, 3, cfg.Poll.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.True(t, cfg.Sync.AbortOnTimeout)
	assert.Equal(t, "./journal.db", cfg.Journal.DatabasePath)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_UnitlessDurationsAreSeconds(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "5")
	t.Setenv("ZOTERO_TIMEOUT", "1.5")

	cfg := NewConfig()

	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Zotero.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
zotero_api_key = "from-file"
zotero_library_id = "777"
calibre_database_path = "/calibre/metadata.db"
poll_interval = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := NewViper()
	require.NoError(t, LoadFile(v, path))
	cfg := Load(v)

	assert.Equal(t, "from-file", cfg.Zotero.APIKey)
	assert.Equal(t, "777", cfg.Zotero.LibraryID)
	assert.Equal(t, "/calibre/metadata.db", cfg.Calibre.DatabasePath)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 12, cfg.Poll.MaxAttempts)
}

func TestLoadFile_Missing(t *testing.T) {
	v := NewViper()
	assert.NoError(t, LoadFile(v, ""))
	assert.Error(t, LoadFile(v, filepath.Join(t.TempDir(), "missing.toml")))
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.Zotero.APIKey = ""
	cfg.Zotero.LibraryID = ""
	cfg.Calibre.DatabasePath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
	assert.Contains(t, err.Error(), "library id")
	assert.Contains(t, err.Error(), "calibre database path")

	cfg.Zotero.APIKey = "k"
	cfg.Zotero.LibraryID = "1"
	cfg.Calibre.DatabasePath = "/x/metadata.db"
	assert.NoError(t, cfg.Validate())

	cfg.Zotero.LibraryType = "team"
	assert.Error(t, cfg.ValidateZotero())

	cfg.Zotero.LibraryType = "user"
	cfg.Poll.MaxAttempts = 0
	assert.Error(t, cfg.Validate())
}
