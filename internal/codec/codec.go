// Package codec shapes domain values and failures into the JSON documents
// the reflection protocol puts on the wire. It is transport independent so
// buffered and streaming paths share identical formatting.
package codec

import (
	"encoding/json"
	"errors"
)

// Error kinds recognized by reflection clients.
const (
	KindInvalidArgument = "invalid_argument"
	KindNotFound        = "not_found"
	KindInternal        = "internal"
)

// Error is a classified failure. Actions return it (or wrap it) when they
// want to control the kind and details of their wire document; anything else
// is reported as internal.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorDoc is the structured document sent for any failed invocation.
type ErrorDoc struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Details any    `json:"details,omitempty"`
}

// FromError converts a failure into its wire document.
func FromError(err error) ErrorDoc {
	if err == nil {
		return ErrorDoc{Kind: KindInternal, Message: "unknown error"}
	}
	var classified *Error
	if errors.As(err, &classified) {
		kind := classified.Kind
		if kind == "" {
			kind = KindInternal
		}
		return ErrorDoc{Kind: kind, Message: classified.Message, Details: classified.Details}
	}
	return ErrorDoc{Kind: KindInternal, Message: err.Error()}
}

// MarshalLine serializes one value as a single newline-terminated JSON line,
// the framing unit of a streaming response.
func MarshalLine(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}
