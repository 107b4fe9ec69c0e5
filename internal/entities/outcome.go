package entities

type BookStatus string

const (
	BookStatusSynced  BookStatus = "synced"
	BookStatusSkipped BookStatus = "skipped"
	BookStatusFailed  BookStatus = "failed"
)

// BookOutcome is the result of processing a single input book file.
type BookOutcome struct {
	Path         string
	Title        string
	BookID       int64
	Status       BookStatus
	Reason       string
	ParentKey    string
	Annotations  int
	NotesCreated int
	NotesFailed  int
	Err          error
}

// Error returns the underlying error message, or an empty string.
func (o BookOutcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
