package marine

import (
	"encoding/json"
	"errors"
)

// Sentinel errors for feed failures. Callers match with errors.Is to
// distinguish an unreachable feed from a garbled one.
var (
	// ErrFeedUnavailable indicates the marine feed could not be reached
	// or returned a server error.
	ErrFeedUnavailable = errors.New("marine feed unavailable")
	// ErrMalformedPayload indicates the feed responded with a payload
	// that could not be decoded.
	ErrMalformedPayload = errors.New("malformed feed payload")
	// ErrBreakNotFound indicates the feed has no data for the requested
	// break.
	ErrBreakNotFound = errors.New("break not found")
)

// HealthResponse is the marine feed's health endpoint payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// rawObject holds one undecoded feed entry. The feed is inconsistent
// about field casing between breaks, so each entry is normalized
// key-by-key rather than unmarshalled into a fixed struct.
type rawObject map[string]json.RawMessage

// ErrorResponse is the feed's error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
