package model

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects which dashboard semantics apply to a source.
type Mode string

const (
	// ModeLookup requires the exact column names, rejects incomplete rows,
	// and reports only stored prices.
	ModeLookup Mode = "lookup"
	// ModeEstimate normalizes column names, drops incomplete rows, and fits
	// a regression so every query yields a price.
	ModeEstimate Mode = "estimate"
)

// Modes lists the accepted mode names.
var Modes = []Mode{ModeLookup, ModeEstimate}

// ParseMode converts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLookup:
		return ModeLookup, nil
	case ModeEstimate:
		return ModeEstimate, nil
	}
	return "", fmt.Errorf("unknown mode %q (want lookup or estimate)", s)
}

// ErrInvalidQuery is returned by Query.Validate.
var ErrInvalidQuery = errors.New("invalid query")

// Query is the user's filter selection.
type Query struct {
	State    string `json:"state"`
	FuelType string `json:"fuel_type"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

// Validate checks that every field is set and the month is in range.
func (q Query) Validate() error {
	switch {
	case q.State == "":
		return fmt.Errorf("%w: state is required", ErrInvalidQuery)
	case q.FuelType == "":
		return fmt.Errorf("%w: fuel type is required", ErrInvalidQuery)
	case q.Year == 0:
		return fmt.Errorf("%w: year is required", ErrInvalidQuery)
	case q.Month < 1 || q.Month > 12:
		return fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidQuery, q.Month)
	}
	return nil
}

func (q Query) String() string {
	return fmt.Sprintf("%s/%s %04d-%02d", q.State, q.FuelType, q.Year, q.Month)
}
