package utils

import (
	"path/filepath"
	"strings"
)

// SplitBookFilename splits a book file path into the file stem Calibre stores
// in data.name and the upper-cased format stored in data.format.
// "/books/Dune.epub" becomes ("Dune", "EPUB"); a file without an extension
// yields an empty format.
func SplitBookFilename(path string) (stem, format string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	format = strings.ToUpper(strings.TrimPrefix(ext, "."))
	return stem, format
}

// CollapseWhitespace replaces every run of whitespace (spaces, tabs, newlines,
// carriage returns and other Unicode spaces) with a single space and trims
// both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
