// Package registry provides a generic name-to-constructor registry used for
// pluggable components configured from raw config payloads.
package registry

import (
	"encoding/json"
	"fmt"
)

type Creator[C any, P any] func(config json.RawMessage, provider P) (C, error)

type Registry[C any, P any] struct {
	creators map[string]Creator[C, P]
	provider P
}

func New[C any, P any](provider P) *Registry[C, P] {
	return &Registry[C, P]{
		provider: provider,
		creators: make(map[string]Creator[C, P]),
	}
}

// Register panics on duplicate ids; registration happens once at startup.
func (r *Registry[C, P]) Register(id string, creator Creator[C, P]) {
	if _, ok := r.creators[id]; ok {
		panic(fmt.Sprintf("registry: %q already registered", id))
	}
	r.creators[id] = creator
}

func (r *Registry[C, P]) New(id string, config json.RawMessage) (C, error) {
	creator, ok := r.creators[id]
	if !ok {
		var zero C
		return zero, fmt.Errorf("registry: unknown id %q", id)
	}
	return creator(config, r.provider)
}

func (r *Registry[C, P]) Has(id string) bool {
	_, ok := r.creators[id]
	return ok
}
