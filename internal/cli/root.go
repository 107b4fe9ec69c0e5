// Package cli implements the calibre-zotero-sync command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/calibre-zotero-sync/internal/config"
)

// Execute runs the command line with the given arguments.
func Execute(ctx context.Context, version, commit string, args []string) error {
	cc := newCommandContext()
	defer cc.close()

	rootCmd := newRootCommand(cc, version, commit)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(ctx *commandContext, version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "calibre-zotero-sync",
		Short:         "Copy Calibre annotations into Zotero as notes",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFile, "config", "c", "", "Configuration file path (TOML, YAML or JSON)")
	flags.String("api-key", "", "Zotero API key (ZOTERO_API_KEY)")
	flags.String("library-id", "", "Zotero user or group id (ZOTERO_LIBRARY_ID)")
	flags.String("library-type", config.DefaultZoteroLibraryType, "Zotero library type: user or group (ZOTERO_LIBRARY_TYPE)")
	flags.String("api-url", config.DefaultZoteroAPIURL, "Zotero API base URL (ZOTERO_API_URL)")
	flags.String("calibre-db", "", "Path to Calibre metadata.db (CALIBRE_DATABASE_PATH)")
	flags.String("state-db", "", "Path to the run journal database, empty disables it (STATE_DATABASE_PATH)")
	flags.String("log-file", "", "Also write logs to this rotating file (LOG_FILE)")

	ctx.bindFlag(rootCmd, config.KeyZoteroAPIKey, "api-key", true)
	ctx.bindFlag(rootCmd, config.KeyZoteroLibraryID, "library-id", true)
	ctx.bindFlag(rootCmd, config.KeyZoteroLibraryType, "library-type", true)
	ctx.bindFlag(rootCmd, config.KeyZoteroAPIURL, "api-url", true)
	ctx.bindFlag(rootCmd, config.KeyCalibreDatabasePath, "calibre-db", true)
	ctx.bindFlag(rootCmd, config.KeyStateDatabasePath, "state-db", true)
	ctx.bindFlag(rootCmd, config.KeyLogFile, "log-file", true)

	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newAnnotationsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
