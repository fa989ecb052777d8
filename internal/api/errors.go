package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is terminal for the request that received it: the
	// caller must drop the credential and send the user to log in.
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
)

// ValidationError is a 4xx other than 401 and 404, typically a rejected payload.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("api: rejected (%d): %s", e.Status, e.Message)
}

// UpstreamError is a 5xx from the backend.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("api: upstream error (%d): %s", e.Status, e.Message)
}

// TransportError wraps failures before a response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message extracts a human readable message from any api error, falling back
// to fallback when none is available.
func Message(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return fallback
}

const maxMessageLen = 300

// bodyMessage pulls the error text out of a backend error body. It knows the
// {"message": ...} and {"detail": ...} shapes, where detail may be a string or
// a list of {"msg": ...} items.
func bodyMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if msg := detailMessage(payload.Detail); msg != "" {
			return msg
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	return msg
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg == "" {
			continue
		}
		if n := len(it.Loc); n > 0 {
			parts = append(parts, fmt.Sprintf("%v: %s", it.Loc[n-1], it.Msg))
			continue
		}
		parts = append(parts, it.Msg)
	}
	return strings.Join(parts, "; ")
}
