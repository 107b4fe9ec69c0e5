package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the Zotero credentials and library are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.zoteroClient()
			if err != nil {
				return err
			}
			items, err := client.Top(cmd.Context(), 1)
			if err != nil {
				return fmt.Errorf("zotero connectivity check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Zotero %s library %s is reachable (%d item(s) returned)\n",
				ctx.cfg.Zotero.LibraryType, ctx.cfg.Zotero.LibraryID, len(items))
			return nil
		},
	}
}
