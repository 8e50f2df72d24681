package analysis

import "errors"

var (
	// ErrInvalidInput marks a missing or malformed required field. Wrapped with
	// the client-facing message.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedMedia marks an upload whose MIME type is not accepted.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrQuotaExceeded means the principal used up its analysis allowance.
	ErrQuotaExceeded = errors.New("analysis quota exceeded")
	// ErrHistoryUnavailable is returned when no history store is configured.
	ErrHistoryUnavailable = errors.New("analysis history unavailable")
)
