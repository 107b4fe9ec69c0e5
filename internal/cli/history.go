package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	journal "github.com/mrlokans/calibre-zotero-sync/internal/database/sync"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs recorded in the run journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("run journal is disabled (set STATE_DATABASE_PATH or --state-db)")
			}
			defer db.Close()

			repo := journal.NewRepository(db.DB)
			out := cmd.OutOrStdout()

			if runID != "" {
				records, err := repo.BookRecordsForRun(runID)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("no books recorded for run %s", runID)
				}
				fmt.Fprintln(out, renderBookRecords(records))
				return nil
			}

			runs, err := repo.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No sync runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the books of a single run")
	return cmd
}
