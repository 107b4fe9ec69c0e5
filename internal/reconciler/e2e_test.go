package reconciler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/calibre-zotero-sync/internal/calibre"
	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/identity"
	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

func createCalibreLibrary(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "metadata.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT NOT NULL);
		CREATE TABLE data (id INTEGER PRIMARY KEY, book INTEGER, format TEXT, name TEXT);
		CREATE TABLE annotations (
			id INTEGER PRIMARY KEY,
			book INTEGER,
			format TEXT,
			annot_data TEXT,
			searchable_text TEXT
		);
		INSERT INTO books (id, title) VALUES (42, 'Dune');
		INSERT INTO data (book, format, name) VALUES (42, 'EPUB', 'Dune');
		INSERT INTO annotations (book, format, annot_data, searchable_text)
			VALUES (42, 'EPUB', '{"start_cfi": "[2]:4"}', 'Fear is the
mind-killer.');
		INSERT INTO annotations (book, format, annot_data, searchable_text)
			VALUES (42, 'EPUB', '{"type": "highlight"}', 'I must not fear.');
	`)
	require.NoError(t, err)

	return dbPath
}

// fakeZotero emulates the write and search endpoints. The parent item only
// becomes searchable after parentVisibleAfter searches following the
// attachment upload, like Zotero's asynchronous metadata retrieval.
type fakeZotero struct {
	mu                 sync.Mutex
	parentVisibleAfter int
	writes             [][]map[string]any
	searches           []string
	attachmentCreated  bool
}

func (f *fakeZotero) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		var items []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.writes = append(f.writes, items)

		success := map[string]string{}
		for i, item := range items {
			if item["itemType"] == zotero.ItemTypeAttachment {
				f.attachmentCreated = true
			}
			success[fmt.Sprint(i)] = fmt.Sprintf("ITEM%04d", len(f.writes)*100+i)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"successful": map[string]any{},
			"success":    success,
			"unchanged":  map[string]any{},
			"failed":     map[string]any{},
		})

	case http.MethodGet:
		f.searches = append(f.searches, r.URL.Query().Get("q"))
		results := []zotero.Item{
			{Key: "ATTACH01", Data: zotero.ItemData{ItemType: "attachment", Title: "Dune"}},
		}
		if f.attachmentCreated && len(f.searches) >= f.parentVisibleAfter {
			results = append(results, zotero.Item{Key: "PARENT01", Data: zotero.ItemData{ItemType: "book", Title: "Dune"}})
		}
		json.NewEncoder(w).Encode(results)
	}
}

func TestEndToEnd_Dune(t *testing.T) {
	dbPath := createCalibreLibrary(t)
	bookPath := filepath.Join(t.TempDir(), "Dune.epub")
	require.NoError(t, os.WriteFile(bookPath, []byte("epub"), 0o644))

	store, err := calibre.Open(dbPath, calibre.NewLinkBuilder("scheme", "locator"))
	require.NoError(t, err)
	defer store.Close()

	fake := &fakeZotero{parentVisibleAfter: 3}
	server := httptest.NewServer(fake)
	defer server.Close()

	client := zotero.NewClient("key", "1", zotero.LibraryTypeUser, zotero.WithBaseURL(server.URL))
	poller := identity.NewPoller(client, 12, time.Millisecond)

	r := New(store, client, poller, Options{})
	report, err := r.Run(context.Background(), []string{bookPath, filepath.Join(filepath.Dir(bookPath), "Dune.PDF")})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 2)
	outcome := report.Outcomes[0]
	assert.Equal(t, entities.BookStatusSynced, outcome.Status, outcome.Error())
	assert.Equal(t, int64(42), outcome.BookID)
	assert.Equal(t, "PARENT01", outcome.ParentKey)
	assert.Equal(t, 2, outcome.NotesCreated)
	assert.Equal(t, entities.BookStatusSkipped, report.Outcomes[1].Status)

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Equal(t, []string{`"Dune"`, `"Dune"`, `"Dune"`}, fake.searches)

	require.Len(t, fake.writes, 2)
	attachment := fake.writes[0]
	require.Len(t, attachment, 1)
	assert.Equal(t, "attachment", attachment[0]["itemType"])
	assert.Equal(t, "linked_file", attachment[0]["linkMode"])
	assert.Equal(t, bookPath, attachment[0]["path"])
	assert.Equal(t, "application/epub+zip", attachment[0]["contentType"])

	notes := fake.writes[1]
	require.Len(t, notes, 2)
	for _, note := range notes {
		assert.Equal(t, "note", note["itemType"])
		assert.Equal(t, "PARENT01", note["parentItem"])
	}
	assert.Contains(t, notes[0]["note"], "Fear is the mind-killer.")
	assert.Contains(t, notes[0]["note"], `href="scheme://view-book/_/42/EPUB?open_at=locator(/8%5B2%5D%3A4)"`)
	assert.Contains(t, notes[1]["note"], "I must not fear.")
	assert.Contains(t, notes[1]["note"], `href="scheme://view-book/_/42/EPUB"`)
}
