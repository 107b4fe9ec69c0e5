package entities

import (
	"time"
)

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncProgress tracks a single sync run in the local journal database.
type SyncProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RunID       string     `gorm:"size:36;uniqueIndex" json:"run_id"`
	Status      SyncStatus `gorm:"size:20;index" json:"status"`
	TotalItems  int        `json:"total_items"`
	Processed   int        `json:"processed"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	CurrentItem string     `gorm:"size:1024" json:"current_item,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (SyncProgress) TableName() string {
	return "sync_progress"
}

// BookSyncRecord is the journal entry for one book processed during a run.
// It is informational only; runs never consult it to skip books.
type BookSyncRecord struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RunID        string     `gorm:"size:36;index" json:"run_id"`
	Path         string     `gorm:"size:1024" json:"path"`
	Title        string     `gorm:"size:512" json:"title,omitempty"`
	CalibreID    int64      `json:"calibre_id,omitempty"`
	Status       BookStatus `gorm:"size:20" json:"status"`
	Reason       string     `gorm:"size:256" json:"reason,omitempty"`
	ParentKey    string     `gorm:"size:16" json:"parent_key,omitempty"`
	Annotations  int        `json:"annotations"`
	NotesCreated int        `json:"notes_created"`
	NotesFailed  int        `json:"notes_failed"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (BookSyncRecord) TableName() string {
	return "book_sync_records"
}
