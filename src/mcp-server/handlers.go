// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
	"github.com/mark3labs/mcp-go/mcp"
)

// ServerInfo identifies the server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability advertises tool support. It carries no fields; presence is
// the whole signal.
type ToolsCapability struct{}

// ServerCapabilities lists the capabilities advertised by initialize.
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// InitializeResult is the result of the initialize method.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// ListToolsResult is the result of the tools/list method. NextCursor is always
// null since listings are never paginated.
type ListToolsResult struct {
	Tools      []ToolDescriptor `json:"tools"`
	NextCursor *string          `json:"nextCursor"`
}

// callToolParams are the params of tools/call.
type callToolParams struct {
	Name      string
	Arguments map[string]any
}

// decodeCallToolParams decodes tools/call params by exact member name. A null
// or absent arguments member yields nil. Numbers must fit a float64.
func decodeCallToolParams(params json.RawMessage) (callToolParams, *jsonrpc.ErrorObject) {
	var p callToolParams

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(params, &fields); err != nil {
		return p, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid tools/call params: params must be an object")
	}

	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &p.Name); err != nil {
			return p, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid tools/call params: name must be a string")
		}
	}
	if p.Name == "" {
		return p, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid tools/call params: missing tool name")
	}

	raw, ok := fields["arguments"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return p, nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return p, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid tools/call params: arguments must be an object")
	}

	// Sorted so the reported argument does not depend on map order.
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	slices.Sort(names)

	p.Arguments = make(map[string]any, len(members))
	for _, name := range names {
		value, err := decodeArgument(members[name])
		if err != nil {
			return p, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Argument '%s' is not a 64-bit number", name)
		}
		p.Arguments[name] = value
	}
	return p, nil
}

// errNumberRange reports a JSON number outside the float64 range.
var errNumberRange = errors.New("number out of range")

// decodeArgument decodes one argument value, converting every number to
// float64. The raw value is already known to be valid JSON.
func decodeArgument(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeNumbers(v)
}

// normalizeNumbers walks a decoded value replacing json.Number with float64.
func normalizeNumbers(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, errNumberRange
		}
		return f, nil
	case map[string]any:
		for k, e := range t {
			n, err := normalizeNumbers(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case []any:
		for i, e := range t {
			n, err := normalizeNumbers(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}

// newInitializeHandler returns the initialize handler. The result is a pure
// function of the static identity captured here.
//
// Client params are required and must carry a protocolVersion, but they never
// influence the result.
func newInitializeHandler(result InitializeResult) MethodHandler {
	return func(_ context.Context, params json.RawMessage) (any, *jsonrpc.ErrorObject) {
		if len(params) == 0 {
			return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Missing initialize params")
		}

		var p mcp.InitializeParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid initialize params: %v", err)
		}
		if p.ProtocolVersion == "" {
			return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid initialize params: missing protocolVersion")
		}

		return result, nil
	}
}

// newToolsListHandler returns the tools/list handler over a fixed catalog.
// Any cursor in params is ignored.
func newToolsListHandler(catalog *Catalog) MethodHandler {
	// The listing never changes, so build it once.
	result := ListToolsResult{Tools: catalog.List()}
	return func(context.Context, json.RawMessage) (any, *jsonrpc.ErrorObject) {
		return result, nil
	}
}

// newToolsCallHandler returns the tools/call handler over a fixed catalog.
func newToolsCallHandler(catalog *Catalog) MethodHandler {
	return func(ctx context.Context, params json.RawMessage) (any, *jsonrpc.ErrorObject) {
		if len(params) == 0 {
			return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Missing tools/call params")
		}

		p, rpcErr := decodeCallToolParams(params)
		if rpcErr != nil {
			return nil, rpcErr
		}

		res, rpcErr := catalog.Invoke(ctx, p.Name, p.Arguments)
		if rpcErr != nil {
			return nil, rpcErr
		}
		return res, nil
	}
}

// defaultMethods returns the fixed method table: initialize and tools/list are
// answered on the cheap path, tools/call requires an upgrade.
func defaultMethods(info InitializeResult, catalog *Catalog) []Method {
	return []Method{
		{
			Name:    string(mcp.MethodInitialize),
			Class:   Direct,
			Handler: newInitializeHandler(info),
		},
		{
			Name:    string(mcp.MethodToolsList),
			Class:   Direct,
			Handler: newToolsListHandler(catalog),
		},
		{
			Name:    string(mcp.MethodToolsCall),
			Class:   RequiresUpgrade,
			Handler: newToolsCallHandler(catalog),
		},
	}
}
