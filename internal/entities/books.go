package entities

// BookRecord is a Calibre book row identified by its stored file name and format.
type BookRecord struct {
	ID     int64
	Title  string
	Format string
}

// AnnotationRecord is a raw row from Calibre's annotations table.
// Location is nil when the stored annotation carries no start CFI.
type AnnotationRecord struct {
	Text     string
	Location *string
}

// Annotation is a normalized highlight ready to be turned into a Zotero note.
type Annotation struct {
	Text string `json:"text"`
	Link string `json:"link"`
}
