package reconciler

import (
	"fmt"
	"html"

	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

// NoteHTML renders the body of a Zotero note for one annotation.
func NoteHTML(a entities.Annotation) string {
	link := html.EscapeString(a.Link)
	return fmt.Sprintf(
		`<p><strong>Annotation:</strong><br>%s</p><hr><p><strong>Link:</strong><br><a href="%s">%s</a></p>`,
		html.EscapeString(a.Text), link, link,
	)
}

// BuildNotes returns one note payload per annotation, in order.
func BuildNotes(parentKey string, annotations []entities.Annotation) []any {
	notes := make([]any, 0, len(annotations))
	for _, a := range annotations {
		notes = append(notes, zotero.NewNote(parentKey, NoteHTML(a)))
	}
	return notes
}
