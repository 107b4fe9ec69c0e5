package reconciler

import "github.com/mrlokans/calibre-zotero-sync/internal/entities"

// Report summarizes a sync run.
type Report struct {
	Outcomes     []entities.BookOutcome
	Synced       int
	Skipped      int
	Failed       int
	NotesCreated int
	NotesFailed  int
	Aborted      bool
}

// Add appends an outcome and updates the totals.
func (r *Report) Add(o entities.BookOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case entities.BookStatusSynced:
		r.Synced++
	case entities.BookStatusSkipped:
		r.Skipped++
	case entities.BookStatusFailed:
		r.Failed++
	}
	r.NotesCreated += o.NotesCreated
	r.NotesFailed += o.NotesFailed
}

// HasFailures reports whether any book failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}
