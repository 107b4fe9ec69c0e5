package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mrlokans/calibre-zotero-sync/internal/config"
	journal "github.com/mrlokans/calibre-zotero-sync/internal/database/sync"
	"github.com/mrlokans/calibre-zotero-sync/internal/identity"
	"github.com/mrlokans/calibre-zotero-sync/internal/reconciler"
)

// ErrBooksFailed is returned when a run finished but at least one book failed.
var ErrBooksFailed = errors.New("some books failed to sync")

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync <book.epub>...",
		Short: "Upload the Calibre annotations of the given books to Zotero",
		Long: `For every book file a linked-file attachment is created in Zotero.
Once Zotero has retrieved metadata and created the parent item, every
annotation of the book is added to that parent as a note with a link back
to the annotated position in Calibre.

Only EPUB files are supported; other formats are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, args, dryRun)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&dryRun, "dry-run", false, "Resolve books and extract annotations without writing to Zotero")
	flags.Int("poll-attempts", config.DefaultPollMaxAttempts, "Searches for the parent item before giving up (POLL_MAX_ATTEMPTS)")
	flags.Duration("poll-interval", config.DefaultPollInterval, "Wait between parent item searches (POLL_INTERVAL)")
	flags.Bool("abort-on-timeout", false, "Stop the run when a parent item cannot be found (ABORT_ON_RESOLUTION_TIMEOUT)")
	flags.String("attachment-title", config.DefaultAttachmentTitle, "Placeholder title of created attachments (ATTACHMENT_TITLE)")

	ctx.bindFlag(cmd, config.KeyPollMaxAttempts, "poll-attempts", false)
	ctx.bindFlag(cmd, config.KeyPollInterval, "poll-interval", false)
	ctx.bindFlag(cmd, config.KeyAbortOnResolutionTimeout, "abort-on-timeout", false)
	ctx.bindFlag(cmd, config.KeyAttachmentTitle, "attachment-title", false)

	return cmd
}

func runSync(cmd *cobra.Command, ctx *commandContext, paths []string, dryRun bool) error {
	cfg := ctx.cfg
	runCtx := cmd.Context()

	opts := reconciler.Options{
		AttachmentTitle: cfg.Sync.AttachmentTitle,
		AbortOnTimeout:  cfg.Sync.AbortOnTimeout,
		DryRun:          dryRun,
	}

	var (
		creator  reconciler.ItemCreator
		resolver reconciler.ParentResolver
	)
	if !dryRun {
		if err := cfg.Validate(); err != nil {
			return err
		}
		client, err := ctx.zoteroClient()
		if err != nil {
			return err
		}
		if _, err := client.Top(runCtx, 1); err != nil {
			return fmt.Errorf("zotero connectivity check failed: %w", err)
		}
		log.Printf("[SYNC] Connected to Zotero %s library %s", cfg.Zotero.LibraryType, cfg.Zotero.LibraryID)

		creator = client
		resolver = identity.NewPoller(client, cfg.Poll.MaxAttempts, cfg.Poll.Interval)
	} else {
		log.Printf("[SYNC] Dry run: nothing will be written to Zotero")
	}

	store, err := ctx.openCalibre()
	if err != nil {
		return err
	}
	defer store.Close()

	rec := reconciler.New(store, creator, resolver, opts)

	db, err := ctx.openJournal()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		repo := journal.NewRepository(db.DB)
		running, err := repo.IsOtherSyncRunning()
		if err != nil {
			log.Printf("[SYNC] Could not check for concurrent runs: %v", err)
		} else if running {
			log.Printf("[SYNC] Warning: another sync run appears to be in progress")
		}
		rec.SetProgressReporter(repo)
		log.Printf("[SYNC] Journaling run %s", repo.RunID())
	}

	report, runErr := rec.Run(runCtx, paths)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report))

	if runErr != nil {
		return runErr
	}
	if report.HasFailures() {
		return fmt.Errorf("%w: %d of %d", ErrBooksFailed, report.Failed, len(report.Outcomes))
	}
	return nil
}
