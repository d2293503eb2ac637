package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrActionExists = errors.New("action already registered")
	ErrActionNil    = errors.New("action is nil")
	ErrInvalidKey   = errors.New("invalid action key")
)

// Registry stores actions by stable key.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Action
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Action)}
}

// ValidateKey checks the "<kind>/<name>" key format.
func ValidateKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || trimmed != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	kind, name, ok := strings.Cut(key, "/")
	if !ok || kind == "" || name == "" {
		return fmt.Errorf("%w: %q (expected <kind>/<name>)", ErrInvalidKey, key)
	}
	for _, c := range key {
		if c == ' ' || c == '\t' || c == '\n' {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidKey, key)
		}
	}
	return nil
}

// Register adds an action under its descriptor key.
func (r *Registry) Register(a Action) error {
	if a == nil {
		return ErrActionNil
	}
	desc := a.Desc()
	if err := ValidateKey(desc.Key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[desc.Key]; ok {
		return fmt.Errorf("%w: %q", ErrActionExists, desc.Key)
	}
	r.items[desc.Key] = a
	return nil
}

// LookupByKey returns the action for an exact key match.
func (r *Registry) LookupByKey(key string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[key]
	return a, ok
}

// List returns a snapshot of descriptors keyed by action key, serializable
// directly to JSON.
func (r *Registry) List() map[string]ActionDesc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ActionDesc, len(r.items))
	for key, a := range r.items {
		out[key] = a.Desc()
	}
	return out
}

// Len reports the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
