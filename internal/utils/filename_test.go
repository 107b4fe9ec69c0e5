package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBookFilename(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantStem   string
		wantFormat string
	}{
		{
			name:       "lowercase epub",
			input:      "/library/Frank Herbert/Dune.epub",
			wantStem:   "Dune",
			wantFormat: "EPUB",
		},
		{
			name:       "uppercase pdf",
			input:      "Report.PDF",
			wantStem:   "Report",
			wantFormat: "PDF",
		},
		{
			name:       "dots in stem",
			input:      "/tmp/Dune - Frank Herbert.v2.epub",
			wantStem:   "Dune - Frank Herbert.v2",
			wantFormat: "EPUB",
		},
		{
			name:       "no extension",
			input:      "/tmp/README",
			wantStem:   "README",
			wantFormat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, format := SplitBookFilename(tt.input)
			assert.Equal(t, tt.wantStem, stem)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "newlines and carriage returns",
			input:    "first line\r\nsecond line\nthird",
			expected: "first line second line third",
		},
		{
			name:     "tabs and repeated spaces",
			input:    "a\t\tb    c",
			expected: "a b c",
		},
		{
			name:     "leading and trailing whitespace",
			input:    " \n\t text \r\n ",
			expected: "text",
		},
		{
			name:     "only whitespace",
			input:    " \t\r\n",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "non-breaking and ideographic spaces",
			input:    "a\u00a0\u00a0b\u3000c",
			expected: "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollapseWhitespace(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, CollapseWhitespace(got), "normalization must be idempotent")
		})
	}
}
