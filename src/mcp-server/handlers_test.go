// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	d := newTestDispatcher(t)

	t.Run("result", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"c","version":"1"}}}`
		out := d.Dispatch(context.Background(), PathCheap, []byte(body))
		require.Equal(t, Answered, out.Kind)
		assert.JSONEq(t, `{
			"jsonrpc":"2.0","id":1,
			"result":{
				"protocolVersion":"2025-03-26",
				"capabilities":{"tools":{}},
				"serverInfo":{"name":"mcp-upgrade-gateway","version":"test"},
				"instructions":"Welcome to the minimal MCP server!"
			}
		}`, encodeOutcome(t, out))
	})

	tests := []struct {
		name    string
		params  string
		wantMsg string
	}{
		{name: "missing params", params: ``, wantMsg: "Missing initialize params"},
		{name: "null params", params: `,"params":null`, wantMsg: "Missing initialize params"},
		{name: "no protocol version", params: `,"params":{}`, wantMsg: "Invalid initialize params: missing protocolVersion"},
		{name: "wrong shape", params: `,"params":{"protocolVersion":5}`, wantMsg: "Invalid initialize params: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"jsonrpc":"2.0","id":1,"method":"initialize"` + tt.params + `}`
			out := d.Dispatch(context.Background(), PathCheap, []byte(body))
			require.Equal(t, Answered, out.Kind)
			require.NotNil(t, out.Response.Error)
			assert.Equal(t, jsonrpc.CodeInvalidParams, out.Response.Error.Code)
			assert.Contains(t, out.Response.Error.Message, tt.wantMsg)
		})
	}
}

func TestToolsList(t *testing.T) {
	d := newTestDispatcher(t)

	for _, body := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{"cursor":"abc"}}`,
	} {
		out := d.Dispatch(context.Background(), PathCheap, []byte(body))
		require.Equal(t, Answered, out.Kind)

		var result struct {
			Tools []struct {
				Name        string          `json:"name"`
				Description string          `json:"description"`
				InputSchema json.RawMessage `json:"inputSchema"`
			} `json:"tools"`
			NextCursor *string `json:"nextCursor"`
		}
		require.NoError(t, json.Unmarshal(out.Response.Result, &result))
		require.Len(t, result.Tools, 1)
		assert.Equal(t, "add", result.Tools[0].Name)
		assert.Equal(t, "Adds two numbers (a and b)", result.Tools[0].Description)
		assert.NotEmpty(t, result.Tools[0].InputSchema)
		assert.Nil(t, result.NextCursor)
		assert.Contains(t, string(out.Response.Result), `"nextCursor":null`)
	}
}

func TestToolsCallParams(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name    string
		params  string
		wantMsg string
	}{
		{name: "missing params", params: ``, wantMsg: "Missing tools/call params"},
		{name: "array params", params: `,"params":[1]`, wantMsg: "Invalid tools/call params: "},
		{name: "missing name", params: `,"params":{"arguments":{}}`, wantMsg: "Invalid tools/call params: missing tool name"},
		{name: "unknown tool", params: `,"params":{"name":"mul","arguments":{}}`, wantMsg: "Unknown tool name: mul"},
		{name: "absent arguments", params: `,"params":{"name":"add"}`, wantMsg: "Missing argument 'a'"},
		{name: "string argument", params: `,"params":{"name":"add","arguments":{"a":"2","b":3}}`, wantMsg: "Argument 'a' must be a number"},
		{name: "uppercase members", params: `,"params":{"NAME":"add","ARGUMENTS":{"a":1,"b":1}}`, wantMsg: "Invalid tools/call params: missing tool name"},
		{name: "uppercase arguments", params: `,"params":{"name":"add","ARGUMENTS":{"a":1,"b":1}}`, wantMsg: "Missing argument 'a'"},
		{name: "non-string name", params: `,"params":{"name":7}`, wantMsg: "Invalid tools/call params: name must be a string"},
		{name: "array arguments", params: `,"params":{"name":"add","arguments":[1,2]}`, wantMsg: "Invalid tools/call params: arguments must be an object"},
		{name: "number overflow", params: `,"params":{"name":"add","arguments":{"a":1e400,"b":1}}`, wantMsg: "Argument 'a' is not a 64-bit number"},
		{name: "nested overflow", params: `,"params":{"name":"add","arguments":{"a":1,"b":1,"c":[{"d":-1e999}]}}`, wantMsg: "Argument 'c' is not a 64-bit number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"jsonrpc":"2.0","id":9,"method":"tools/call"` + tt.params + `}`
			out := d.Dispatch(context.Background(), PathAuthoritative, []byte(body))
			require.Equal(t, Answered, out.Kind)
			require.NotNil(t, out.Response.Error)
			assert.Equal(t, `9`, string(out.Response.ID))
			assert.Equal(t, jsonrpc.CodeInvalidParams, out.Response.Error.Code)
			assert.Contains(t, out.Response.Error.Message, tt.wantMsg)
		})
	}
}

func TestToolsCallDomainError(t *testing.T) {
	d := newTestDispatcher(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":1e308,"b":1e308}}}`
	out := d.Dispatch(context.Background(), PathAuthoritative, []byte(body))
	require.Equal(t, Answered, out.Kind)
	require.False(t, out.Response.IsError())

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(out.Response.Result, &result))
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "is not a finite number")
}

func TestToolsCallParamsNoDecoderInternals(t *testing.T) {
	d := newTestDispatcher(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":1e400,"b":1}}}`
	out := d.Dispatch(context.Background(), PathAuthoritative, []byte(body))
	require.Equal(t, Answered, out.Kind)
	require.NotNil(t, out.Response.Error)
	assert.Equal(t, "Argument 'a' is not a 64-bit number", out.Response.Error.Message)
	assert.NotContains(t, out.Response.Error.Message, "json:")
	assert.NotContains(t, out.Response.Error.Message, "Go struct")
}

func TestDecodeCallToolParams(t *testing.T) {
	p, rpcErr := decodeCallToolParams(json.RawMessage(`{"name":"add","arguments":{"a":2,"b":-0.5,"nested":{"n":[1,"x",true,null]}}}`))
	require.Nil(t, rpcErr)
	assert.Equal(t, "add", p.Name)
	assert.Equal(t, map[string]any{
		"a":      2.0,
		"b":      -0.5,
		"nested": map[string]any{"n": []any{1.0, "x", true, nil}},
	}, p.Arguments)

	p, rpcErr = decodeCallToolParams(json.RawMessage(`{"name":"add","arguments":null}`))
	require.Nil(t, rpcErr)
	assert.Nil(t, p.Arguments)
}
