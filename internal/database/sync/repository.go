// Package sync provides database operations for sync run journaling.
//
// This package implements the ProgressReporter interface used by the reconciler.
//
// # Interface Implementation
//
//	var _ reconciler.ProgressReporter = (*Repository)(nil)
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	err := repo.StartSync(len(books))
package sync

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
)

// staleAfter is how long a running sync may go without an update before it
// is considered interrupted.
const staleAfter = 10 * time.Minute

// Repository journals a single sync run. Each repository gets its own run id.
type Repository struct {
	db    *gorm.DB
	runID string
}

// NewRepository creates a sync repository with a fresh run id.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, runID: uuid.NewString()}
}

// RunID returns the id of the run journaled by this repository.
func (r *Repository) RunID() string {
	return r.runID
}

// GetSyncProgress retrieves the progress of this repository's run.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("run_id = ?", r.runID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the progress record of this run.
// Implements ProgressReporter.StartSync.
func (r *Repository) StartSync(totalItems int) error {
	var progress entities.SyncProgress
	result := r.db.Where("run_id = ?", r.runID).First(&progress)

	now := time.Now()
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		progress = entities.SyncProgress{
			RunID:      r.runID,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Succeeded = 0
	progress.Failed = 0
	progress.Skipped = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress updates the counters of the running sync.
// Implements ProgressReporter.UpdateProgress.
func (r *Repository) UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("run_id = ?", r.runID).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// RecordBook stores the outcome of one processed book.
// Implements ProgressReporter.RecordBook.
func (r *Repository) RecordBook(outcome entities.BookOutcome) error {
	record := entities.BookSyncRecord{
		RunID:        r.runID,
		Path:         outcome.Path,
		Title:        outcome.Title,
		CalibreID:    outcome.BookID,
		Status:       outcome.Status,
		Reason:       outcome.Reason,
		ParentKey:    outcome.ParentKey,
		Annotations:  outcome.Annotations,
		NotesCreated: outcome.NotesCreated,
		NotesFailed:  outcome.NotesFailed,
		Error:        outcome.Error(),
	}
	return r.db.Create(&record).Error
}

// CompleteSync marks the run as completed or failed.
// Implements ProgressReporter.CompleteSync.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("run_id = ?", r.runID).
		Updates(updates).Error
}

// GetBookRecords returns the books journaled for this run in processing order.
func (r *Repository) GetBookRecords() ([]entities.BookSyncRecord, error) {
	return r.BookRecordsForRun(r.runID)
}

// BookRecordsForRun returns the books journaled for any run.
func (r *Repository) BookRecordsForRun(runID string) ([]entities.BookSyncRecord, error) {
	var records []entities.BookSyncRecord
	err := r.db.Where("run_id = ?", runID).Order("id").Find(&records).Error
	return records, err
}

// RecentRuns returns the most recently started runs, newest first.
func (r *Repository) RecentRuns(limit int) ([]entities.SyncProgress, error) {
	var runs []entities.SyncProgress
	query := r.db.Order("started_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

// IsOtherSyncRunning checks whether another run against the same journal is
// still in progress. Runs not updated within 10 minutes are marked as
// interrupted and ignored.
func (r *Repository) IsOtherSyncRunning() (bool, error) {
	var running []entities.SyncProgress
	err := r.db.Where("run_id <> ? AND status = ?", r.runID, entities.SyncStatusRunning).Find(&running).Error
	if err != nil {
		return false, err
	}

	staleThreshold := time.Now().Add(-staleAfter)
	active := false
	for _, p := range running {
		if p.UpdatedAt.Before(staleThreshold) {
			now := time.Now()
			err := r.db.Model(&entities.SyncProgress{}).
				Where("id = ?", p.ID).
				Updates(map[string]any{
					"status":       entities.SyncStatusFailed,
					"error":        "sync was interrupted",
					"completed_at": now,
				}).Error
			if err != nil {
				return false, err
			}
			continue
		}
		active = true
	}

	return active, nil
}
