package history

import "errors"

var (
	// ErrNotFound is returned when an entry does not exist for the user.
	ErrNotFound = errors.New("history entry not found")
	// ErrStoreUnavailable marks a history datastore outage.
	ErrStoreUnavailable = errors.New("history store unavailable")
)
