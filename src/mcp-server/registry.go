// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
)

// Classification states which execution path may run a method.
type Classification int

const (
	// Unknown marks a method absent from the registry.
	Unknown Classification = iota
	// Direct marks a read-only method answerable on the cheap path.
	Direct
	// RequiresUpgrade marks a state-mutating method that only runs on the
	// authoritative path.
	RequiresUpgrade
)

// String returns the classification name used in logs.
func (c Classification) String() string {
	switch c {
	case Direct:
		return "direct"
	case RequiresUpgrade:
		return "requires-upgrade"
	default:
		return "unknown"
	}
}

// MethodHandler executes one JSON-RPC method. Params are raw and may be nil.
//
// A non-nil ErrorObject is sent back to the caller as the response error; the
// result is ignored in that case.
type MethodHandler func(ctx context.Context, params json.RawMessage) (any, *jsonrpc.ErrorObject)

// Method binds a method name to its classification and handler.
type Method struct {
	Name    string
	Class   Classification
	Handler MethodHandler
}

// Registry maps method names to classifications and handlers.
//
// A Registry is immutable after [NewRegistry] returns and is safe for
// concurrent use without locking.
type Registry struct {
	methods map[string]Method
}

// NewRegistry builds a registry from a fixed method table.
//
// Parameters:
//   - methods: Method bindings; names must be unique and non-empty, classes must
//     be Direct or RequiresUpgrade, and handlers non-nil
//
// Returns:
//   - *Registry: The immutable registry
//   - error: Construction error describing the first invalid binding
func NewRegistry(methods ...Method) (*Registry, error) {
	table := make(map[string]Method, len(methods))
	for _, m := range methods {
		if m.Name == "" {
			return nil, fmt.Errorf("method name must not be empty")
		}
		if m.Class != Direct && m.Class != RequiresUpgrade {
			return nil, fmt.Errorf("method %q: invalid classification %s", m.Name, m.Class)
		}
		if m.Handler == nil {
			return nil, fmt.Errorf("method %q: nil handler", m.Name)
		}
		if _, dup := table[m.Name]; dup {
			return nil, fmt.Errorf("method %q registered twice", m.Name)
		}
		table[m.Name] = m
	}
	return &Registry{methods: table}, nil
}

// Classify returns the classification of method, or Unknown when absent.
func (r *Registry) Classify(method string) Classification {
	if m, ok := r.methods[method]; ok {
		return m.Class
	}
	return Unknown
}

// Dispatch runs the handler bound to method.
// Unknown methods yield a MethodNotFound error.
func (r *Registry) Dispatch(ctx context.Context, method string, params json.RawMessage) (any, *jsonrpc.ErrorObject) {
	m, ok := r.methods[method]
	if !ok {
		return nil, jsonrpc.NewError(jsonrpc.CodeMethodNotFound, "Method not found: %s", method)
	}
	return m.Handler(ctx, params)
}

// Methods returns the registered method names in lexical order.
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
