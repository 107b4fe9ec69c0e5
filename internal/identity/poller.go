// Package identity finds the Zotero parent item that corresponds to a local
// Calibre book.
//
// The two libraries share no identifier. After a linked-file attachment is
// created, Zotero's desktop client retrieves metadata for the file and
// creates a regular parent item asynchronously; the only way to find it is
// to search by title until it shows up in the index.
//
// # States
//
//	searching --match--> resolved
//	searching --budget exhausted--> timed_out
//
// Search errors are retried like a miss, except a rejected API key, which
// ends the resolution at once.
//
// The first non-attachment item whose trimmed title equals the book title
// case-insensitively wins. Several items with the same title are not
// disambiguated.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

const (
	DefaultMaxAttempts = 12
	DefaultInterval    = 5 * time.Second
)

// ErrResolutionTimeout indicates the parent item did not appear within the retry budget
var ErrResolutionTimeout = errors.New("timed out waiting for the parent item in Zotero")

type State string

const (
	StateSearching State = "searching"
	StateResolved  State = "resolved"
	StateTimedOut  State = "timed_out"
)

// Searcher is the subset of the Zotero client the poller needs.
type Searcher interface {
	SearchItems(ctx context.Context, query string) ([]zotero.Item, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Result is the terminal state of a resolution.
type Result struct {
	State    State
	Item     *zotero.Item
	Attempts int
	LastErr  error
}

// Poller repeatedly searches Zotero for a parent item by title.
type Poller struct {
	searcher    Searcher
	maxAttempts int
	interval    time.Duration
	sleep       SleepFunc
}

// NewPoller creates a poller. Non-positive values fall back to 12 attempts
// and a 5 second interval.
func NewPoller(searcher Searcher, maxAttempts int, interval time.Duration) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		searcher:    searcher,
		maxAttempts: maxAttempts,
		interval:    interval,
		sleep:       sleepContext,
	}
}

// SetSleep replaces the wait between attempts.
func (p *Poller) SetSleep(fn SleepFunc) {
	if fn != nil {
		p.sleep = fn
	}
}

// Resolve polls until a matching parent item is found or the attempt budget
// is used up. A match returns immediately without waiting for the interval.
// Search errors count as failed attempts.
func (p *Poller) Resolve(ctx context.Context, title string) (*Result, error) {
	res := &Result{State: StateSearching}
	query := PhraseQuery(title)

	for res.State == StateSearching {
		res.Attempts++

		items, err := p.searcher.SearchItems(ctx, query)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			if errors.Is(err, zotero.ErrInvalidAPIKey) {
				res.LastErr = err
				return res, fmt.Errorf("search for %q: %w", title, err)
			}
			res.LastErr = err
			log.Printf("[POLL] Attempt %d/%d: search failed: %v", res.Attempts, p.maxAttempts, err)
		default:
			if item, ok := SelectParent(items, title); ok {
				res.State = StateResolved
				res.Item = item
				continue
			}
		}

		if res.Attempts >= p.maxAttempts {
			res.State = StateTimedOut
			continue
		}

		log.Printf("[POLL] Attempt %d/%d: %q not found, sleeping %s", res.Attempts, p.maxAttempts, title, p.interval)
		if err := p.sleep(ctx, p.interval); err != nil {
			return res, err
		}
	}

	if res.State == StateTimedOut {
		if res.LastErr != nil {
			return res, fmt.Errorf("%w: %q after %d attempts (last error: %w)", ErrResolutionTimeout, title, res.Attempts, res.LastErr)
		}
		return res, fmt.Errorf("%w: %q after %d attempts", ErrResolutionTimeout, title, res.Attempts)
	}

	log.Printf("[POLL] Found parent item %s (%s) after %d attempt(s)", res.Item.Key, res.Item.Data.ItemType, res.Attempts)
	return res, nil
}

// SelectParent returns the first non-attachment item whose title matches.
func SelectParent(items []zotero.Item, title string) (*zotero.Item, bool) {
	for i := range items {
		if items[i].IsAttachment() {
			continue
		}
		if zotero.TitlesEqual(items[i].Data.Title, title) {
			return &items[i], true
		}
	}
	return nil, false
}

// PhraseQuery quotes a title for Zotero's quick search. Embedded double
// quotes are dropped since they would end the phrase early.
func PhraseQuery(title string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(title), `"`, "") + `"`
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
