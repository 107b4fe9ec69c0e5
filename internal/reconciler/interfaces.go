package reconciler

import (
	"context"

	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/identity"
	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

// BookStore provides read access to the local Calibre library.
type BookStore interface {
	ResolveBook(ctx context.Context, stem, format string) (*entities.BookRecord, error)
	Annotations(ctx context.Context, bookID int64) ([]entities.Annotation, error)
}

// ItemCreator creates Zotero items in bulk.
type ItemCreator interface {
	CreateItems(ctx context.Context, items []any) (*zotero.WriteResponse, error)
}

// ParentResolver finds the Zotero parent item for a book title.
type ParentResolver interface {
	Resolve(ctx context.Context, title string) (*identity.Result, error)
}

// ProgressReporter receives run progress. Implementations must tolerate being
// called once per processed book.
type ProgressReporter interface {
	StartSync(totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	RecordBook(outcome entities.BookOutcome) error
	CompleteSync(succeeded bool, errorMsg string) error
}
