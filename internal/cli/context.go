package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrlokans/calibre-zotero-sync/internal/calibre"
	"github.com/mrlokans/calibre-zotero-sync/internal/config"
	"github.com/mrlokans/calibre-zotero-sync/internal/database"
	"github.com/mrlokans/calibre-zotero-sync/internal/logging"
	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

// commandContext carries configuration shared by all subcommands.
type commandContext struct {
	v          *viper.Viper
	configFile string

	cfg       *config.Config
	logCloser io.Closer
}

func newCommandContext() *commandContext {
	return &commandContext{v: config.NewViper()}
}

// bindFlag makes a command-line flag override the matching config key.
func (c *commandContext) bindFlag(cmd *cobra.Command, key, flag string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	if err := c.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func (c *commandContext) load(cmd *cobra.Command) error {
	if err := config.LoadFile(c.v, c.configFile); err != nil {
		return err
	}
	c.cfg = config.Load(c.v)

	closer, err := logging.Setup(logging.Options{
		File:       c.cfg.Log.File,
		MaxSizeMB:  c.cfg.Log.MaxSizeMB,
		MaxBackups: c.cfg.Log.MaxBackups,
		Console:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.logCloser = closer
	return nil
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
		c.logCloser = nil
	}
}

func (c *commandContext) zoteroClient() (*zotero.Client, error) {
	if err := c.cfg.ValidateZotero(); err != nil {
		return nil, err
	}
	return zotero.NewClient(
		c.cfg.Zotero.APIKey,
		c.cfg.Zotero.LibraryID,
		zotero.LibraryType(c.cfg.Zotero.LibraryType),
		zotero.WithBaseURL(c.cfg.Zotero.APIURL),
		zotero.WithTimeout(c.cfg.Zotero.Timeout),
	), nil
}

func (c *commandContext) openCalibre() (*calibre.Store, error) {
	if err := c.cfg.ValidateCalibre(); err != nil {
		return nil, err
	}
	links := calibre.NewLinkBuilder(c.cfg.Calibre.LinkScheme, c.cfg.Calibre.LinkLocator)
	store, err := calibre.Open(c.cfg.Calibre.DatabasePath, links)
	if err != nil {
		return nil, err
	}
	log.Printf("[CALIBRE] Opened library database %s", store.Path())
	return store, nil
}

// openJournal returns nil when no journal database is configured.
func (c *commandContext) openJournal() (*database.Database, error) {
	if c.cfg.Journal.DatabasePath == "" {
		return nil, nil
	}
	return database.NewDatabase(c.cfg.Journal.DatabasePath)
}
