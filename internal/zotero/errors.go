package zotero

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidAPIKey indicates the API key is missing, invalid or lacks access to the library
var ErrInvalidAPIKey = errors.New("invalid Zotero API key or insufficient permissions")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("zotero API rate limit exceeded")

// ErrWriteTokenUsed indicates a write request was already processed under the same write token
var ErrWriteTokenUsed = errors.New("zotero write token already used")

// ServerError represents a 5xx error from the Zotero API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Zotero server error: HTTP %d", e.StatusCode)
}

// WriteError reports the entries of a multi-object write that Zotero rejected.
// Indexes refer to positions in the submitted item slice.
type WriteError struct {
	Total  int
	Failed map[string]WriteFailure
}

func (e *WriteError) Error() string {
	indexes := make([]string, 0, len(e.Failed))
	for idx := range e.Failed {
		indexes = append(indexes, idx)
	}
	sort.Strings(indexes)

	parts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		f := e.Failed[idx]
		parts = append(parts, fmt.Sprintf("#%s: %d %s", idx, f.Code, f.Message))
	}
	return fmt.Sprintf("zotero rejected %d of %d items (%s)", len(e.Failed), e.Total, strings.Join(parts, "; "))
}
