package prices

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFile means the source could not be found or opened.
	ErrMissingFile = errors.New("price source not found")
	// ErrUnreadable means the source opened but could not be decoded.
	ErrUnreadable = errors.New("price source unreadable")
	// ErrMissingColumns means a required column is absent from the header.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrNoMatch means no row matches the query exactly.
	ErrNoMatch = errors.New("no matching price")
	// ErrEmptyValue marks a blank required cell.
	ErrEmptyValue = errors.New("empty value")
)

// MissingColumnsError lists the required columns a source lacks.
type MissingColumnsError struct {
	Path    string
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s (found: %s)",
		e.Path, strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// RowError is a cell that could not be converted. Load counts such rows as
// dropped; FromRows returns them when DropIncomplete is unset.
type RowError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: column %s: %q: %v", e.Path, e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
