// Package reconciler attaches Calibre annotations to Zotero items.
//
// For every input book the reconciler resolves the book in the Calibre
// library, extracts its annotations, creates a linked-file attachment in
// Zotero, waits for the parent item Zotero creates from that attachment and
// finally uploads one note per annotation under that parent.
//
// Books are processed one at a time. Every per-book failure is turned into a
// BookOutcome and the run moves on to the next book; the only exception is a
// parent resolution timeout when Options.AbortOnTimeout is set.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/mrlokans/calibre-zotero-sync/internal/calibre"
	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/identity"
	"github.com/mrlokans/calibre-zotero-sync/internal/utils"
	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

// DefaultAttachmentTitle is the placeholder title given to new attachments.
// The companion Zotero plugin looks for it and renames the attachment after
// its parent once metadata has been retrieved.
const DefaultAttachmentTitle = "ChangeMe.epub"

const (
	reasonUnsupportedFormat = "unsupported format"
	reasonNotFound          = "not found in Calibre library"
	reasonStoreError        = "calibre query failed"
	reasonAttachmentFailed  = "attachment creation failed"
	reasonParentTimeout     = "parent item not found in Zotero"
	reasonParentLookup      = "parent lookup failed"
	reasonNotesFailed       = "note upload failed"
	reasonNotesPartial      = "note upload partially failed"
	reasonDryRun            = "dry run"
)

// ErrRunAborted is returned by Run when processing stopped before all books were handled
var ErrRunAborted = errors.New("sync run aborted")

type Options struct {
	AttachmentTitle string
	// AbortOnTimeout stops the whole run when a parent item cannot be
	// resolved. When false only the current book is marked failed.
	AbortOnTimeout bool
	// DryRun resolves books and extracts annotations without writing to Zotero.
	DryRun bool
}

type Reconciler struct {
	store    BookStore
	creator  ItemCreator
	resolver ParentResolver
	progress ProgressReporter
	opts     Options
}

func New(store BookStore, creator ItemCreator, resolver ParentResolver, opts Options) *Reconciler {
	if opts.AttachmentTitle == "" {
		opts.AttachmentTitle = DefaultAttachmentTitle
	}
	return &Reconciler{
		store:    store,
		creator:  creator,
		resolver: resolver,
		opts:     opts,
	}
}

// SetProgressReporter enables run journaling.
func (r *Reconciler) SetProgressReporter(p ProgressReporter) {
	r.progress = p
}

// SyncBook processes a single book file and reports what happened to it.
func (r *Reconciler) SyncBook(ctx context.Context, path string) entities.BookOutcome {
	outcome := entities.BookOutcome{Path: path}

	stem, format := utils.SplitBookFilename(path)
	if format != calibre.SupportedFormat {
		return skipped(outcome, reasonUnsupportedFormat,
			fmt.Errorf("%w: %s is not an EPUB", calibre.ErrUnsupportedFormat, filepath.Base(path)))
	}

	book, err := r.store.ResolveBook(ctx, stem, format)
	if err != nil {
		switch {
		case errors.Is(err, calibre.ErrUnsupportedFormat):
			return skipped(outcome, reasonUnsupportedFormat, err)
		case errors.Is(err, calibre.ErrBookNotFound):
			return skipped(outcome, reasonNotFound, err)
		default:
			return failed(outcome, reasonStoreError, err)
		}
	}
	outcome.BookID = book.ID
	outcome.Title = book.Title

	annotations, err := r.store.Annotations(ctx, book.ID)
	if err != nil {
		return failed(outcome, reasonStoreError, err)
	}
	outcome.Annotations = len(annotations)
	log.Printf("[SYNC] %q (calibre id %d): %d annotations", book.Title, book.ID, len(annotations))

	if r.opts.DryRun {
		return skipped(outcome, reasonDryRun, nil)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	attachment := zotero.NewLinkedFileAttachment(r.opts.AttachmentTitle, absPath)
	attRes, err := r.creator.CreateItems(ctx, []any{attachment})
	if err != nil {
		return failed(outcome, reasonAttachmentFailed, err)
	}
	if err := attRes.Err(); err != nil {
		return failed(outcome, reasonAttachmentFailed, err)
	}
	if attRes.SuccessCount() == 0 {
		return failed(outcome, reasonAttachmentFailed, errors.New("zotero reported no created attachment"))
	}
	log.Printf("[SYNC] Linked attachment %s created, waiting for Zotero metadata retrieval", attRes.FirstKey())

	res, err := r.resolver.Resolve(ctx, book.Title)
	if err != nil {
		if errors.Is(err, identity.ErrResolutionTimeout) {
			return failed(outcome, reasonParentTimeout, err)
		}
		return failed(outcome, reasonParentLookup, err)
	}
	parentKey := res.Item.Key
	outcome.ParentKey = parentKey

	if len(annotations) == 0 {
		outcome.Status = entities.BookStatusSynced
		return outcome
	}

	noteRes, err := r.creator.CreateItems(ctx, BuildNotes(parentKey, annotations))
	if err != nil {
		outcome.NotesFailed = len(annotations)
		return failed(outcome, reasonNotesFailed, err)
	}
	outcome.NotesCreated = noteRes.SuccessCount()
	outcome.NotesFailed = len(noteRes.Failed)
	if err := noteRes.Err(); err != nil {
		reason := reasonNotesPartial
		if outcome.NotesCreated == 0 {
			reason = reasonNotesFailed
		}
		return failed(outcome, reason, err)
	}

	outcome.Status = entities.BookStatusSynced
	return outcome
}

// Run processes the given book files sequentially. Per-book failures never
// stop the run; the returned error is non-nil only when the context is
// cancelled or AbortOnTimeout ends the run early.
func (r *Reconciler) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{}
	r.startProgress(len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			r.completeProgress(false, err.Error())
			return report, err
		}

		log.Printf("[SYNC] --- Processing: %s ---", filepath.Base(path))
		outcome := r.SyncBook(ctx, path)
		report.Add(outcome)
		logOutcome(outcome)
		r.recordProgress(report, outcome)

		if outcome.Status == entities.BookStatusFailed && ctx.Err() != nil {
			report.Aborted = true
			r.completeProgress(false, ctx.Err().Error())
			return report, ctx.Err()
		}

		if r.opts.AbortOnTimeout && errors.Is(outcome.Err, identity.ErrResolutionTimeout) {
			report.Aborted = true
			err := fmt.Errorf("%w: %w", ErrRunAborted, outcome.Err)
			r.completeProgress(false, err.Error())
			return report, err
		}
	}

	r.completeProgress(true, "")
	return report, nil
}

func skipped(o entities.BookOutcome, reason string, err error) entities.BookOutcome {
	o.Status = entities.BookStatusSkipped
	o.Reason = reason
	o.Err = err
	return o
}

func failed(o entities.BookOutcome, reason string, err error) entities.BookOutcome {
	o.Status = entities.BookStatusFailed
	o.Reason = reason
	o.Err = err
	return o
}

func logOutcome(o entities.BookOutcome) {
	switch o.Status {
	case entities.BookStatusSynced:
		log.Printf("[SYNC] Synced %q: parent %s, %d notes uploaded", o.Title, o.ParentKey, o.NotesCreated)
	case entities.BookStatusSkipped:
		if o.Err != nil {
			log.Printf("[SYNC] Skipping %s: %s (%v)", filepath.Base(o.Path), o.Reason, o.Err)
		} else {
			log.Printf("[SYNC] Skipping %s: %s", filepath.Base(o.Path), o.Reason)
		}
	case entities.BookStatusFailed:
		log.Printf("[SYNC] Failed %s: %s: %v", filepath.Base(o.Path), o.Reason, o.Err)
	}
}

func (r *Reconciler) startProgress(total int) {
	if r.progress == nil {
		return
	}
	if err := r.progress.StartSync(total); err != nil {
		log.Printf("[SYNC] Failed to record sync start: %v", err)
	}
}

func (r *Reconciler) recordProgress(report *Report, outcome entities.BookOutcome) {
	if r.progress == nil {
		return
	}
	if err := r.progress.RecordBook(outcome); err != nil {
		log.Printf("[SYNC] Failed to record book outcome: %v", err)
	}
	if err := r.progress.UpdateProgress(len(report.Outcomes), report.Synced, report.Failed, report.Skipped, outcome.Path); err != nil {
		log.Printf("[SYNC] Failed to update sync progress: %v", err)
	}
}

func (r *Reconciler) completeProgress(succeeded bool, errorMsg string) {
	if r.progress == nil {
		return
	}
	if err := r.progress.CompleteSync(succeeded, errorMsg); err != nil {
		log.Printf("[SYNC] Failed to record sync completion: %v", err)
	}
}
