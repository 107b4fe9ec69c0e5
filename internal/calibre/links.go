package calibre

import (
	"fmt"
	"strings"
)

const (
	DefaultLinkScheme  = "calibre"
	DefaultLinkLocator = "epubcfi"

	// cfiPrefix is prepended to every stored start CFI; Calibre's viewer
	// expects the spine step of the package document in front of it.
	cfiPrefix = "/8"
)

// cfiEscapes is the complete set of characters escaped inside a deep link.
// Everything else in the CFI is passed through untouched.
var cfiEscapes = map[string]string{
	"[": "%5B",
	"]": "%5D",
	":": "%3A",
}

var cfiReplacer = newReplacer(cfiEscapes)

func newReplacer(table map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(table)*2)
	for from, to := range table {
		pairs = append(pairs, from, to)
	}
	return strings.NewReplacer(pairs...)
}

// EncodeLocation percent-encodes the brackets and colons of a raw CFI.
// The input is not parsed or validated; the escape runs in a single pass so
// an already escaped sequence is never encoded twice.
func EncodeLocation(raw string) string {
	return cfiReplacer.Replace(raw)
}

// LinkBuilder produces calibre:// deep links into the Calibre viewer.
type LinkBuilder struct {
	scheme  string
	locator string
}

// NewLinkBuilder returns a builder for the given URL scheme and locator
// function name. Empty values fall back to calibre and epubcfi.
func NewLinkBuilder(scheme, locator string) *LinkBuilder {
	if scheme == "" {
		scheme = DefaultLinkScheme
	}
	if locator == "" {
		locator = DefaultLinkLocator
	}
	return &LinkBuilder{scheme: scheme, locator: locator}
}

// BookURL opens the book without a position.
func (b *LinkBuilder) BookURL(bookID int64, format string) string {
	return fmt.Sprintf("%s://view-book/_/%d/%s", b.scheme, bookID, format)
}

// LocationURL opens the EPUB viewer at the given raw CFI.
func (b *LinkBuilder) LocationURL(bookID int64, rawLocation string) string {
	return fmt.Sprintf("%s://view-book/_/%d/%s?open_at=%s(%s%s)",
		b.scheme, bookID, SupportedFormat, b.locator, cfiPrefix, EncodeLocation(rawLocation))
}

// Link returns the location URL when a location is present and the plain
// book URL otherwise.
func (b *LinkBuilder) Link(bookID int64, format string, location *string) string {
	if location == nil || *location == "" {
		return b.BookURL(bookID, format)
	}
	return b.LocationURL(bookID, *location)
}
