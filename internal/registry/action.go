package registry

import (
	"context"
	"encoding/json"
)

// StreamCallback receives one intermediate chunk during a streaming run.
// A non-nil error aborts the run; the sink owns transmission, the action
// never buffers or retries chunks.
type StreamCallback func(chunk any) error

// ActionDesc is the serializable identity and schema surface of one action.
type ActionDesc struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	InputSchema  json.RawMessage `json:"inputSchema,omitempty"`
	OutputSchema json.RawMessage `json:"outputSchema,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

// Output is the terminal outcome of one successful action run.
type Output struct {
	Response any
	TraceID  string
}

// Action is the execution boundary for one registered callable unit.
// Run produces exactly one terminal outcome regardless of how many chunks
// were emitted through cb; cb may be nil for buffered execution.
type Action interface {
	Desc() ActionDesc
	Run(ctx context.Context, rawInput json.RawMessage, runCtx map[string]any, cb StreamCallback) (Output, error)
}
