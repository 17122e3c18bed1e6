package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PreconditionError means a request was never attempted.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// ErrMissingAPIKey is returned before any network activity when no key is set.
var ErrMissingAPIKey = &PreconditionError{Message: "Please enter your Claude API key (type /key <your-key>)"}

// TransportError is a connection failure or timeout; no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("Network error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a non-2xx response. Message holds the server's error
// message when the body was parseable.
type ProtocolError struct {
	Status  int
	Message string
	Raw     string
	Parsed  bool
}

func (e *ProtocolError) Error() string {
	if e.Parsed {
		return "API Error: " + e.Message
	}
	return fmt.Sprintf("API Error (%d): %s", e.Status, e.Raw)
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Err error
	Raw string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to parse response: %v\nBody: %s", e.Err, e.Raw)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// newProtocolError extracts {"error":{"message":...}} from body when present.
func newProtocolError(status int, body []byte) *ProtocolError {
	pe := &ProtocolError{Status: status, Raw: string(body)}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && strings.TrimSpace(envelope.Error.Message) != "" {
		pe.Message = envelope.Error.Message
		pe.Parsed = true
	}
	return pe
}

// IsRetryable reports whether err is a transient failure the user may simply resend.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Status == 429 || pe.Status >= 500
	}
	return false
}
