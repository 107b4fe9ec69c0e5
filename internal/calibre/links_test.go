package calibre

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decodeLocation(s string) string {
	return strings.NewReplacer("%5B", "[", "%5D", "]", "%3A", ":").Replace(s)
}

func TestEncodeLocation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "brackets and colon",
			input:    "[2]:4",
			expected: "%5B2%5D%3A4",
		},
		{
			name:     "typical calibre cfi",
			input:    "/4/2[chapter01]/6/1:120",
			expected: "/4/2%5Bchapter01%5D/6/1%3A120",
		},
		{
			name:     "nothing to escape",
			input:    "/2/4/6",
			expected: "/2/4/6",
		},
		{
			name:     "other reserved characters untouched",
			input:    "/2[a b]?x=1&y#z",
			expected: "/2%5Ba b%5D?x=1&y#z",
		},
		{
			name:     "malformed input passes through",
			input:    "]]::[[",
			expected: "%5D%5D%3A%3A%5B%5B",
		},
		{
			name:     "percent sign is not re-encoded",
			input:    "%5B[",
			expected: "%5B%5B",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeLocation(tt.input))
		})
	}
}

func TestEncodeLocation_RoundTrip(t *testing.T) {
	inputs := []string{
		"[2]:4",
		"/4/2[chapter01]/6/1:120",
		"/6/14[id:with:colons]!/4/2/1:0",
		"[[[]]]:::",
		"plain",
		"unicode [глава]:1",
	}

	for _, input := range inputs {
		encoded := EncodeLocation(input)
		assert.NotContains(t, encoded, "[")
		assert.NotContains(t, encoded, "]")
		assert.NotContains(t, encoded, ":")
		assert.Equal(t, input, decodeLocation(encoded), "round trip of %q", input)
	}
}

func TestLinkBuilder(t *testing.T) {
	links := NewLinkBuilder("", "")
	location := "[2]:4"
	empty := ""

	assert.Equal(t, "calibre://view-book/_/42/EPUB", links.BookURL(42, "EPUB"))
	assert.Equal(t,
		"calibre://view-book/_/42/EPUB?open_at=epubcfi(/8%5B2%5D%3A4)",
		links.LocationURL(42, location))
	assert.Equal(t, links.LocationURL(42, location), links.Link(42, "EPUB", &location))
	assert.Equal(t, "calibre://view-book/_/42/EPUB", links.Link(42, "EPUB", nil))
	assert.Equal(t, "calibre://view-book/_/42/EPUB", links.Link(42, "EPUB", &empty))
}

func TestLinkBuilder_CustomSchemeAndLocator(t *testing.T) {
	links := NewLinkBuilder("scheme", "locator")
	location := "[2]:4"

	assert.Equal(t, "scheme://view-book/_/42/EPUB", links.Link(42, "EPUB", nil))
	assert.Equal(t,
		"scheme://view-book/_/42/EPUB?open_at=locator(/8%5B2%5D%3A4)",
		links.Link(42, "EPUB", &location))
}
