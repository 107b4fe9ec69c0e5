package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/calibre-zotero-sync/internal/calibre"
	"github.com/mrlokans/calibre-zotero-sync/internal/database/sync"
	"github.com/mrlokans/calibre-zotero-sync/internal/identity"
	"github.com/mrlokans/calibre-zotero-sync/internal/reconciler"
	"github.com/mrlokans/calibre-zotero-sync/internal/zotero"
)

// =============================================================================
// Local Library
// =============================================================================

// BookStore implementations
var _ reconciler.BookStore = (*calibre.Store)(nil)

// =============================================================================
// Zotero
// =============================================================================

// ItemCreator implementations
var _ reconciler.ItemCreator = (*zotero.Client)(nil)

// Searcher implementations
var _ identity.Searcher = (*zotero.Client)(nil)

// ParentResolver implementations
var _ reconciler.ParentResolver = (*identity.Poller)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

// ProgressReporter implementations
var _ reconciler.ProgressReporter = (*sync.Repository)(nil)
