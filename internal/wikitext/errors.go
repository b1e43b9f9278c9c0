package wikitext

import "errors"

// Structural failures are fatal to the enclosing render or patch call.
// A template that trips one of these is misconfigured, not merely stale.
var (
	// ErrSectionNotFound is returned when no section at any level carries
	// the requested title.
	ErrSectionNotFound = errors.New("wikitext: section not found")

	// ErrTableNotFound is returned when a section contains no {| ... |} block.
	ErrTableNotFound = errors.New("wikitext: no table in section")

	// ErrMalformedTable is returned when a table lacks the |- row separator
	// after its header row, so no insertion anchor exists.
	ErrMalformedTable = errors.New("wikitext: malformed table")
)
