// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"
)

// ToolDescriptor is the wire form of a tool in a tools/list result.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
}

// ToolResult is the result of a tools/call. Content holds [mcp.Content] items
// (text today; image, audio and resource items encode the same way).
// IsError is always written so callers can tell domain failures apart.
type ToolResult struct {
	Content []mcp.Content `json:"content"`
	IsError bool          `json:"isError"`
}

// catalogEntry pairs a descriptor with its compiled schema and handler.
type catalogEntry struct {
	descriptor ToolDescriptor
	schema     *gojsonschema.Schema
	handler    ToolHandler
}

// Catalog is the static set of tools served by tools/list and tools/call.
//
// A Catalog is immutable after [NewCatalog] returns and is safe for concurrent
// use without locking.
type Catalog struct {
	entries []catalogEntry
	index   map[string]int
}

// NewCatalog builds a catalog from tool definitions, preserving declaration order.
//
// Each tool's input schema is compiled once here, so argument validation on the
// hot path never re-parses schemas.
//
// Parameters:
//   - defs: Tool definitions; names must be unique and non-empty, handlers non-nil
//
// Returns:
//   - *Catalog: The immutable catalog
//   - error: Construction error for duplicate names or invalid schemas
func NewCatalog(defs ...ToolDefinition) (*Catalog, error) {
	c := &Catalog{
		entries: make([]catalogEntry, 0, len(defs)),
		index:   make(map[string]int, len(defs)),
	}

	for _, def := range defs {
		name := def.Tool.Name
		if name == "" {
			return nil, fmt.Errorf("tool name must not be empty")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %q: nil handler", name)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", name)
		}

		schemaJSON, err := inputSchemaJSON(def.Tool)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", name, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
		if err != nil {
			return nil, fmt.Errorf("tool %q: invalid input schema: %w", name, err)
		}
		annotations, err := annotationsJSON(def.Tool)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", name, err)
		}

		c.index[name] = len(c.entries)
		c.entries = append(c.entries, catalogEntry{
			descriptor: ToolDescriptor{
				Name:        name,
				Description: def.Tool.Description,
				InputSchema: schemaJSON,
				Annotations: annotations,
			},
			schema:  schema,
			handler: def.Handler,
		})
	}

	return c, nil
}

// List returns the tool descriptors in declaration order.
// The returned slice is a copy and may be modified by the caller.
func (c *Catalog) List() []ToolDescriptor {
	out := make([]ToolDescriptor, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.descriptor
	}
	return out
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int { return len(c.entries) }

// Invoke validates arguments against the tool's input schema and runs it.
//
// Parameters:
//   - ctx: Context passed to the tool handler
//   - name: Registered tool name
//   - arguments: Decoded tool arguments; nil is treated as an empty object
//
// Returns:
//   - *ToolResult: The tool result; IsError marks a domain failure
//   - *jsonrpc.ErrorObject: InvalidParams for an unknown tool or bad arguments,
//     InternalError when the handler itself fails
func (c *Catalog) Invoke(ctx context.Context, name string, arguments map[string]any) (*ToolResult, *jsonrpc.ErrorObject) {
	idx, ok := c.index[name]
	if !ok {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Unknown tool name: %s", name)
	}
	entry := c.entries[idx]

	if arguments == nil {
		arguments = map[string]any{}
	}
	if rpcErr := validateArguments(entry.schema, arguments); rpcErr != nil {
		return nil, rpcErr
	}

	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = arguments

	res, err := entry.handler(ctx, request)
	if err != nil {
		return nil, jsonrpc.NewError(jsonrpc.CodeInternalError, "Tool %s failed: %v", name, err)
	}
	if res == nil {
		return nil, jsonrpc.NewError(jsonrpc.CodeInternalError, "Tool %s returned no result", name)
	}

	content := res.Content
	if content == nil {
		content = []mcp.Content{}
	}
	return &ToolResult{Content: content, IsError: res.IsError}, nil
}

// validateArguments checks arguments against a compiled schema. The first
// violation, in a stable order, becomes the error message; all violations are
// listed in the error data.
func validateArguments(schema *gojsonschema.Schema, arguments map[string]any) *jsonrpc.ErrorObject {
	result, err := schema.Validate(gojsonschema.NewGoLoader(arguments))
	if err != nil {
		return jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Invalid arguments: %v", err)
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	sort.SliceStable(violations, func(i, j int) bool {
		fi, fj := violationField(violations[i]), violationField(violations[j])
		if fi != fj {
			return fi < fj
		}
		return violations[i].Type() < violations[j].Type()
	})

	details := make([]string, len(violations))
	for i, v := range violations {
		details[i] = violationMessage(v)
	}
	return jsonrpc.NewError(jsonrpc.CodeInvalidParams, "%s", details[0]).WithData(details)
}

// violationField returns the argument a violation is about.
func violationField(v gojsonschema.ResultError) string {
	if v.Type() == "required" {
		if p, ok := v.Details()["property"].(string); ok {
			return p
		}
	}
	return v.Field()
}

// violationMessage renders a schema violation for the caller.
func violationMessage(v gojsonschema.ResultError) string {
	switch v.Type() {
	case "required":
		if p, ok := v.Details()["property"].(string); ok {
			return fmt.Sprintf("Missing argument '%s'", p)
		}
	case "invalid_type":
		if expected, ok := v.Details()["expected"].(string); ok {
			return fmt.Sprintf("Argument '%s' must be a %s", v.Field(), expected)
		}
	}
	return v.String()
}

// inputSchemaJSON returns the tool's input schema as JSON, preferring a raw
// schema when the definition carries one.
func inputSchemaJSON(tool mcp.Tool) (json.RawMessage, error) {
	if len(tool.RawInputSchema) > 0 {
		return tool.RawInputSchema, nil
	}
	data, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}
	return data, nil
}

// annotationsJSON returns the tool annotations, or nil when none are set.
func annotationsJSON(tool mcp.Tool) (json.RawMessage, error) {
	data, err := json.Marshal(tool.Annotations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal annotations: %w", err)
	}
	if string(data) == "{}" || string(data) == "null" {
		return nil, nil
	}
	return data, nil
}
