package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the crawl domain.
var (
	// ErrFetchFailed indicates that a listing or detail page could not be fetched.
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrFieldCoercion indicates that a scraped field could not be converted to its typed value.
	ErrFieldCoercion = errors.New("field coercion failed")

	// ErrOutputWrite indicates that the exported table could not be written.
	ErrOutputWrite = errors.New("output write failed")

	// ErrLayoutChanged indicates that a data row no longer has the shape the extractor relies on.
	ErrLayoutChanged = errors.New("page layout changed")
)

// FetchError describes a network failure or a non-success HTTP status.
// StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports ErrFetchFailed so callers can match on the category.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// FieldCoercionError is returned when a cell's text does not parse into its field type.
type FieldCoercionError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("coerce field '%s' from %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldCoercionError) Unwrap() error { return e.Err }

func (e *FieldCoercionError) Is(target error) bool { return target == ErrFieldCoercion }

// OutputWriteError wraps a filesystem failure while writing the exported table.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

func (e *OutputWriteError) Is(target error) bool { return target == ErrOutputWrite }

// LayoutError is returned when a row passes the cell-count filter but lacks
// another element the extractor depends on.
type LayoutError struct {
	Page   string
	Row    int
	Detail string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s page row %d: %s", e.Page, e.Row, e.Detail)
}

func (e *LayoutError) Is(target error) bool { return target == ErrLayoutChanged }
