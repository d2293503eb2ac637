// Package actions ships deterministic builtin actions used to exercise the
// reflection API locally without an embedding application.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/reflectctl/internal/codec"
	"github.com/danmuck/reflectctl/internal/registry"
	"github.com/google/uuid"
)

var ErrUnknownBuiltin = errors.New("unknown builtin action")

// Config carries builtin action options.
type Config struct {
	Greeting      string
	CountdownFrom int
}

// DefaultConfig returns builtin action defaults.
func DefaultConfig() Config {
	return Config{
		Greeting:      "hi",
		CountdownFrom: 3,
	}
}

// Builtin resolves manifest keys to constructed actions.
func Builtin(keys []string, cfg Config) ([]registry.Action, error) {
	out := make([]registry.Action, 0, len(keys))
	for _, raw := range keys {
		key := strings.TrimSpace(raw)
		switch key {
		case "flow/greet":
			out = append(out, NewGreet(cfg.Greeting))
		case "util/echo":
			out = append(out, NewEcho())
		case "flow/countdown":
			out = append(out, NewCountdown(cfg.CountdownFrom))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, key)
		}
	}
	return out, nil
}

// Func adapts a plain function to the registry action boundary.
type Func struct {
	desc registry.ActionDesc
	run  func(ctx context.Context, rawInput json.RawMessage, runCtx map[string]any, cb registry.StreamCallback) (any, error)
}

// NewFunc wraps run as an action described by desc. Trace IDs are fresh
// UUIDs per invocation.
func NewFunc(desc registry.ActionDesc, run func(ctx context.Context, rawInput json.RawMessage, runCtx map[string]any, cb registry.StreamCallback) (any, error)) *Func {
	return &Func{desc: desc, run: run}
}

func (f *Func) Desc() registry.ActionDesc {
	return f.desc
}

func (f *Func) Run(ctx context.Context, rawInput json.RawMessage, runCtx map[string]any, cb registry.StreamCallback) (registry.Output, error) {
	response, err := f.run(ctx, rawInput, runCtx, cb)
	if err != nil {
		return registry.Output{}, err
	}
	return registry.Output{Response: response, TraceID: uuid.NewString()}, nil
}

type greetInput struct {
	Name string `json:"name"`
}

// NewGreet builds the flow/greet action: greets by name, or bare when no
// name is supplied.
func NewGreet(greeting string) *Func {
	if strings.TrimSpace(greeting) == "" {
		greeting = DefaultConfig().Greeting
	}
	desc := registry.ActionDesc{
		Key:         "flow/greet",
		Name:        "greet",
		Description: "deterministic greeting flow",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}}}`),
		Metadata:    map[string]any{"type": "flow"},
	}
	return NewFunc(desc, func(_ context.Context, rawInput json.RawMessage, _ map[string]any, _ registry.StreamCallback) (any, error) {
		var in greetInput
		if err := decodeInput(rawInput, &in); err != nil {
			return nil, err
		}
		out := greeting
		if strings.TrimSpace(in.Name) != "" {
			out = greeting + ", " + in.Name
		}
		return map[string]any{"greeting": out}, nil
	})
}

// NewEcho builds the util/echo action: returns its raw input verbatim.
func NewEcho() *Func {
	desc := registry.ActionDesc{
		Key:         "util/echo",
		Name:        "echo",
		Description: "returns the invocation input unchanged",
		Metadata:    map[string]any{"type": "util"},
	}
	return NewFunc(desc, func(_ context.Context, rawInput json.RawMessage, _ map[string]any, _ registry.StreamCallback) (any, error) {
		if len(rawInput) == 0 {
			return nil, nil
		}
		var out any
		if err := json.Unmarshal(rawInput, &out); err != nil {
			return nil, &codec.Error{Kind: codec.KindInvalidArgument, Message: "echo input is not valid JSON"}
		}
		return out, nil
	})
}

type countdownInput struct {
	From int `json:"from"`
}

// NewCountdown builds the flow/countdown action. In streaming mode it emits
// one chunk per count before the terminal result; buffered callers get only
// the terminal result.
func NewCountdown(defaultFrom int) *Func {
	if defaultFrom <= 0 {
		defaultFrom = DefaultConfig().CountdownFrom
	}
	desc := registry.ActionDesc{
		Key:         "flow/countdown",
		Name:        "countdown",
		Description: "counts down from a starting value, streaming each step",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"from":{"type":"integer"}}}`),
		Metadata:    map[string]any{"type": "flow", "streaming": true},
	}
	return NewFunc(desc, func(_ context.Context, rawInput json.RawMessage, _ map[string]any, cb registry.StreamCallback) (any, error) {
		var in countdownInput
		if err := decodeInput(rawInput, &in); err != nil {
			return nil, err
		}
		from := in.From
		if from <= 0 {
			from = defaultFrom
		}
		if cb != nil {
			for i := from; i > 0; i-- {
				if err := cb(map[string]any{"count": i}); err != nil {
					return nil, err
				}
			}
		}
		return map[string]any{"counted": from}, nil
	})
}

func decodeInput(rawInput json.RawMessage, out any) error {
	if len(rawInput) == 0 || string(rawInput) == "null" {
		return nil
	}
	if err := json.Unmarshal(rawInput, out); err != nil {
		return &codec.Error{Kind: codec.KindInvalidArgument, Message: "malformed action input: " + err.Error()}
	}
	return nil
}
