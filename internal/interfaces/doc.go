// Package interfaces documents the seams between the sync engine and the
// systems it talks to.
//
// # Interface Categories
//
// ## Local Library
//
//   - BookStore: resolves book files and reads their annotations
//     (internal/reconciler/interfaces.go), implemented by calibre.Store
//
// ## Zotero
//
//   - ItemCreator: bulk item creation (internal/reconciler/interfaces.go)
//   - Searcher: title search used while waiting for a parent item
//     (internal/identity/poller.go)
//   - ParentResolver: waits for the parent item of a new attachment
//     (internal/reconciler/interfaces.go), implemented by identity.Poller
//
// ## Progress Tracking
//
//   - ProgressReporter: run journaling (internal/reconciler/interfaces.go),
//     implemented by the gorm repository in internal/database/sync
//
// # Adding a New Annotation Source
//
// The reconciler only needs a BookStore. To read annotations from another
// e-book application:
//
//  1. Create a package under internal/ with a Store type
//
//     type Store struct { db *sql.DB }
//
//     func (s *Store) ResolveBook(ctx context.Context, stem, format string) (*entities.BookRecord, error)
//     func (s *Store) Annotations(ctx context.Context, bookID int64) ([]entities.Annotation, error)
//
//  2. Return calibre.ErrBookNotFound or calibre.ErrUnsupportedFormat (or
//     wrap them) so the reconciler skips instead of failing the book
//
//  3. Add a compile-time check to checks.go
//
//     var _ reconciler.BookStore = (*Store)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
