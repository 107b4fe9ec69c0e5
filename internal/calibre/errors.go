package calibre

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates the input file is not an EPUB
var ErrUnsupportedFormat = errors.New("unsupported book format")

// ErrBookNotFound indicates no Calibre book matches the file name and format
var ErrBookNotFound = errors.New("book not found in Calibre library")

// StoreError wraps a failure executing a query against the Calibre database
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("calibre store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
