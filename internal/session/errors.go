package session

import "errors"

// Local validation failures. These never reach the network and are surfaced
// to the user as inline notices.
var (
	ErrEmptyQuestion     = errors.New("question is empty")
	ErrSubmissionPending = errors.New("a query is already in flight")
	ErrNoActiveDomain    = errors.New("no data domain selected")
	ErrNoResults         = errors.New("no results to export")
)
