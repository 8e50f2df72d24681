package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrMalformedResponse indicates the completion did not contain a JSON object.
var ErrMalformedResponse = errors.New("ai response is not a json object")

// ErrNotConfigured is returned when no hosted model is available.
var ErrNotConfigured = errors.New("ai provider not configured")

// ErrProviderUnavailable indicates a transient provider failure (HTTP 5xx, overloaded).
var ErrProviderUnavailable = errors.New("ai provider unavailable")
