// Package database provides the optional run journal.
//
// The journal is a separate SQLite file (never the Calibre library) that
// records each sync run and the outcome of every book processed in it:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── sync/            # Run progress and per-book records
//
// Usage:
//
//	db, err := database.NewDatabase("./sync-journal.db")
//	repo := sync.NewRepository(db.DB)
//	reconciler.SetProgressReporter(repo)
//
// The journal is write-only from the point of view of a sync run: books that
// were synced before are not skipped.
package database
