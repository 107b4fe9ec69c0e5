package calibre

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/utils"
)

// SupportedFormat is the only book format that can be synced.
const SupportedFormat = "EPUB"

const (
	resolveBookQuery = `
		SELECT B.id, B.title
		FROM books B
		JOIN data D ON B.id = D.book
		WHERE D.name = ? AND D.format = ?
		LIMIT 1
	`

	annotationsQuery = `
		SELECT searchable_text, json_extract(annot_data, '$.start_cfi')
		FROM annotations
		WHERE book = ? AND annot_data IS NOT NULL
		ORDER BY id
	`
)

// Store reads books and annotations from a Calibre metadata.db.
// A single connection is held for the lifetime of the store; callers must
// Close it when the run ends.
type Store struct {
	dbPath string
	db     *sql.DB
	links  *LinkBuilder
}

// Open opens the Calibre library database read-only.
func Open(dbPath string, links *LinkBuilder) (*Store, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("calibre database not found: %s", dbPath)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open calibre database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to calibre database: %w", err)
	}

	if links == nil {
		links = NewLinkBuilder("", "")
	}

	return &Store{
		dbPath: dbPath,
		db:     db,
		links:  links,
	}, nil
}

// readOnlyDSN builds a read-only SQLite URI. The path is escaped so that
// '#', '?' and '%' in directory names stay part of the path.
func readOnlyDSN(dbPath string) string {
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dbPath), RawQuery: "mode=ro"}
	return u.String()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ResolveBook finds the Calibre book whose stored file has the given stem and
// format. Non-EPUB formats are rejected before the database is queried.
func (s *Store) ResolveBook(ctx context.Context, stem, format string) (*entities.BookRecord, error) {
	format = strings.ToUpper(format)
	if format != SupportedFormat {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	book := &entities.BookRecord{Format: format}
	err := s.db.QueryRowContext(ctx, resolveBookQuery, stem, format).Scan(&book.ID, &book.Title)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s.%s", ErrBookNotFound, stem, strings.ToLower(format))
	}
	if err != nil {
		return nil, &StoreError{Op: "resolve book", Err: err}
	}

	return book, nil
}

// AnnotationRecords returns the raw annotation rows for a book in storage order.
func (s *Store) AnnotationRecords(ctx context.Context, bookID int64) ([]entities.AnnotationRecord, error) {
	rows, err := s.db.QueryContext(ctx, annotationsQuery, bookID)
	if err != nil {
		return nil, &StoreError{Op: "query annotations", Err: err}
	}
	defer rows.Close()

	records := []entities.AnnotationRecord{}
	for rows.Next() {
		var text, location sql.NullString
		if err := rows.Scan(&text, &location); err != nil {
			return nil, &StoreError{Op: "scan annotation", Err: err}
		}

		record := entities.AnnotationRecord{Text: text.String}
		if location.Valid {
			loc := location.String
			record.Location = &loc
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "iterate annotations", Err: err}
	}

	return records, nil
}

// Annotations returns the normalized annotations of a book, one per stored
// row, with duplicates and order preserved. A book without annotations
// yields an empty slice.
func (s *Store) Annotations(ctx context.Context, bookID int64) ([]entities.Annotation, error) {
	records, err := s.AnnotationRecords(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return Normalize(s.links, bookID, records), nil
}

// Normalize converts raw annotation rows into text/link pairs.
func Normalize(links *LinkBuilder, bookID int64, records []entities.AnnotationRecord) []entities.Annotation {
	annotations := make([]entities.Annotation, 0, len(records))
	for _, r := range records {
		annotations = append(annotations, entities.Annotation{
			Text: utils.CollapseWhitespace(r.Text),
			Link: links.Link(bookID, SupportedFormat, r.Location),
		})
	}
	return annotations
}
