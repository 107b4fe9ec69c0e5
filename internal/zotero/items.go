package zotero

import (
	"strconv"
	"strings"
)

const (
	ItemTypeAttachment = "attachment"
	ItemTypeNote       = "note"

	LinkModeLinkedFile = "linked_file"
	ContentTypeEPUB    = "application/epub+zip"
)

// Item is a library item as returned by the read endpoints.
type Item struct {
	Key     string   `json:"key"`
	Version int      `json:"version"`
	Data    ItemData `json:"data"`
}

// ItemData holds the subset of item fields the sync reads.
type ItemData struct {
	Key        string `json:"key,omitempty"`
	Version    int    `json:"version,omitempty"`
	ItemType   string `json:"itemType"`
	Title      string `json:"title,omitempty"`
	ParentItem string `json:"parentItem,omitempty"`
	LinkMode   string `json:"linkMode,omitempty"`
	Path       string `json:"path,omitempty"`
	Note       string `json:"note,omitempty"`
}

// IsAttachment reports whether the item is an attachment rather than a
// regular (parent-capable) item.
func (i Item) IsAttachment() bool {
	return i.Data.ItemType == ItemTypeAttachment
}

// AttachmentPayload creates an attachment item.
type AttachmentPayload struct {
	ItemType    string `json:"itemType"`
	LinkMode    string `json:"linkMode"`
	Title       string `json:"title"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// NewLinkedFileAttachment builds a top-level EPUB attachment that links to a
// file on the local disk instead of uploading it.
func NewLinkedFileAttachment(title, path string) AttachmentPayload {
	return AttachmentPayload{
		ItemType:    ItemTypeAttachment,
		LinkMode:    LinkModeLinkedFile,
		Title:       title,
		Path:        path,
		ContentType: ContentTypeEPUB,
	}
}

// NotePayload creates a child note.
type NotePayload struct {
	ItemType   string `json:"itemType"`
	ParentItem string `json:"parentItem"`
	Note       string `json:"note"`
}

// NewNote builds a child note with an HTML body.
func NewNote(parentKey, html string) NotePayload {
	return NotePayload{
		ItemType:   ItemTypeNote,
		ParentItem: parentKey,
		Note:       html,
	}
}

// WriteFailure is a single rejected entry of a multi-object write.
type WriteFailure struct {
	Key     string `json:"key,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteResponse is the result of a multi-object write. All maps are keyed
// by the index of the item in the submitted slice.
type WriteResponse struct {
	Successful map[string]Item         `json:"successful"`
	Success    map[string]string       `json:"success"`
	Unchanged  map[string]string       `json:"unchanged"`
	Failed     map[string]WriteFailure `json:"failed"`

	total int
}

func newWriteResponse() *WriteResponse {
	return &WriteResponse{
		Successful: map[string]Item{},
		Success:    map[string]string{},
		Unchanged:  map[string]string{},
		Failed:     map[string]WriteFailure{},
	}
}

// merge folds a chunk response into r, shifting the chunk's indexes by offset.
func (r *WriteResponse) merge(chunk *WriteResponse, offset, size int) {
	shift := func(idx string) string {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return idx
		}
		return strconv.Itoa(n + offset)
	}
	for idx, item := range chunk.Successful {
		r.Successful[shift(idx)] = item
	}
	for idx, key := range chunk.Success {
		r.Success[shift(idx)] = key
	}
	for idx, key := range chunk.Unchanged {
		r.Unchanged[shift(idx)] = key
	}
	for idx, f := range chunk.Failed {
		r.Failed[shift(idx)] = f
	}
	r.total += size
}

// SuccessCount returns the number of items created or unchanged.
func (r *WriteResponse) SuccessCount() int {
	keys := map[string]bool{}
	for idx := range r.Success {
		keys[idx] = true
	}
	for idx := range r.Successful {
		keys[idx] = true
	}
	for idx := range r.Unchanged {
		keys[idx] = true
	}
	return len(keys)
}

// FirstKey returns the key of the item at index 0, if it was created.
func (r *WriteResponse) FirstKey() string {
	if item, ok := r.Successful["0"]; ok && item.Key != "" {
		return item.Key
	}
	return r.Success["0"]
}

// Err returns a *WriteError when any submitted item was rejected.
func (r *WriteResponse) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &WriteError{Total: r.total, Failed: r.Failed}
}

// TitlesEqual compares titles the way the parent lookup does: trimmed and
// case-insensitive.
func TitlesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
