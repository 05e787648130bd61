// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDispatcher builds a dispatcher over the default method table and tools.
func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	srv, err := NewServerBuilder().WithDefaultTools().WithVersion("test").Build()
	require.NoError(t, err)
	return srv.Dispatcher()
}

// spyDispatcher registers counting handlers for one Direct and one
// RequiresUpgrade method.
func spyDispatcher(t *testing.T) (*Dispatcher, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	var direct, mutating atomic.Int32
	registry, err := NewRegistry(
		Method{Name: "read", Class: Direct, Handler: func(context.Context, json.RawMessage) (any, *jsonrpc.ErrorObject) {
			direct.Add(1)
			return map[string]string{"ok": "read"}, nil
		}},
		Method{Name: "write", Class: RequiresUpgrade, Handler: func(context.Context, json.RawMessage) (any, *jsonrpc.ErrorObject) {
			mutating.Add(1)
			return map[string]string{"ok": "write"}, nil
		}},
	)
	require.NoError(t, err)
	return NewDispatcher(registry, nil), &direct, &mutating
}

func encodeOutcome(t *testing.T, out Outcome) string {
	t.Helper()
	require.NotNil(t, out.Response, "outcome %s carries no response", out.Kind)
	data, err := jsonrpc.Encode(out.Response)
	require.NoError(t, err)
	return string(data)
}

func TestDispatchPolicy(t *testing.T) {
	d, direct, mutating := spyDispatcher(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		path     Path
		body     string
		wantKind OutcomeKind
		wantJSON string
		direct   int32
		mutating int32
	}{
		{
			name:     "direct on cheap executes",
			path:     PathCheap,
			body:     `{"jsonrpc":"2.0","id":1,"method":"read"}`,
			wantKind: Answered,
			wantJSON: `{"jsonrpc":"2.0","id":1,"result":{"ok":"read"}}`,
			direct:   1,
		},
		{
			name:     "upgrade on cheap redirects",
			path:     PathCheap,
			body:     `{"jsonrpc":"2.0","id":2,"method":"write"}`,
			wantKind: Upgrade,
		},
		{
			name:     "unknown on cheap is method not found",
			path:     PathCheap,
			body:     `{"jsonrpc":"2.0","id":3,"method":"nope"}`,
			wantKind: Answered,
			wantJSON: `{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"Method not found: nope"}}`,
		},
		{
			name:     "direct on authoritative is rejected",
			path:     PathAuthoritative,
			body:     `{"jsonrpc":"2.0","id":4,"method":"read"}`,
			wantKind: Rejected,
			wantJSON: `{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"Invalid method for update call: read"}}`,
		},
		{
			name:     "upgrade on authoritative executes",
			path:     PathAuthoritative,
			body:     `{"jsonrpc":"2.0","id":5,"method":"write"}`,
			wantKind: Answered,
			wantJSON: `{"jsonrpc":"2.0","id":5,"result":{"ok":"write"}}`,
			mutating: 1,
		},
		{
			name:     "unknown on authoritative is rejected",
			path:     PathAuthoritative,
			body:     `{"jsonrpc":"2.0","id":6,"method":"nope"}`,
			wantKind: Rejected,
			wantJSON: `{"jsonrpc":"2.0","id":6,"error":{"code":-32601,"message":"Invalid method for update call: nope"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			direct.Store(0)
			mutating.Store(0)

			out := d.Dispatch(ctx, tt.path, []byte(tt.body))
			assert.Equal(t, tt.wantKind, out.Kind)
			if tt.wantJSON == "" {
				assert.Nil(t, out.Response)
			} else {
				assert.JSONEq(t, tt.wantJSON, encodeOutcome(t, out))
			}
			assert.Equal(t, tt.direct, direct.Load(), "direct handler runs")
			assert.Equal(t, tt.mutating, mutating.Load(), "mutating handler runs")
		})
	}
}

func TestDispatchUpgradeNeverExecutesOnCheapPath(t *testing.T) {
	d, _, mutating := spyDispatcher(t)

	for range 50 {
		out := d.Dispatch(context.Background(), PathCheap, []byte(`{"jsonrpc":"2.0","id":"w","method":"write","params":{}}`))
		require.Equal(t, Upgrade, out.Kind)
		require.Nil(t, out.Response)
	}
	assert.Zero(t, mutating.Load())
}

func TestDispatchUnknownPathFailsClosed(t *testing.T) {
	d, direct, mutating := spyDispatcher(t)

	for _, path := range []Path{Path(2), Path(-1), Path(99)} {
		t.Run(path.String(), func(t *testing.T) {
			for _, method := range []string{"read", "write", "nope"} {
				out := d.Dispatch(context.Background(), path, []byte(`{"jsonrpc":"2.0","id":1,"method":"`+method+`","params":{}}`))
				require.Equal(t, Rejected, out.Kind, method)
				require.NotNil(t, out.Response)
				assert.Equal(t, `1`, string(out.Response.ID))
				assert.Equal(t, jsonrpc.CodeInvalidRequest, out.Response.Error.Code)
				assert.Equal(t, "Unsupported path for method: "+method, out.Response.Error.Message)
			}

			out := d.Dispatch(context.Background(), path, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
			assert.Equal(t, Rejected, out.Kind)
		})
	}
	assert.Zero(t, direct.Load())
	assert.Zero(t, mutating.Load())
}

func TestDispatchUnknownPathRejectsToolCall(t *testing.T) {
	d := newTestDispatcher(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}`
	out := d.Dispatch(context.Background(), Path(2), []byte(body))
	require.Equal(t, Rejected, out.Kind)
	assert.Nil(t, out.Response.Result)
}

func TestDispatchEchoesID(t *testing.T) {
	d := newTestDispatcher(t)

	ids := []string{`1`, `0`, `-7`, `1.5`, `1e3`, `"x"`, `""`, `"1"`, `null`, `"é"`}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			body := `{"jsonrpc":"2.0","id":` + id + `,"method":"tools/list"}`
			out := d.Dispatch(context.Background(), PathCheap, []byte(body))
			require.Equal(t, Answered, out.Kind)
			assert.Equal(t, id, string(out.Response.ID))

			unknown := `{"jsonrpc":"2.0","id":` + id + `,"method":"foo"}`
			out = d.Dispatch(context.Background(), PathCheap, []byte(unknown))
			require.Equal(t, Answered, out.Kind)
			assert.Equal(t, id, string(out.Response.ID))

			rejected := `{"jsonrpc":"2.0","id":` + id + `,"method":"initialize"}`
			out = d.Dispatch(context.Background(), PathAuthoritative, []byte(rejected))
			require.Equal(t, Rejected, out.Kind)
			assert.Equal(t, id, string(out.Response.ID))
		})
	}
}

func TestDispatchNotifications(t *testing.T) {
	d, direct, mutating := spyDispatcher(t)

	methods := []string{"read", "write", "notifications/initialized", "notifications/cancelled", "unknown/thing"}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			body := []byte(`{"jsonrpc":"2.0","method":"` + method + `"}`)

			cheap := d.Dispatch(context.Background(), PathCheap, body)
			assert.Equal(t, Ack, cheap.Kind)
			assert.Nil(t, cheap.Response)

			auth := d.Dispatch(context.Background(), PathAuthoritative, body)
			require.Equal(t, Rejected, auth.Kind)
			assert.JSONEq(t,
				`{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Cannot process notifications in update call"}}`,
				encodeOutcome(t, auth))
		})
	}
	assert.Zero(t, direct.Load())
	assert.Zero(t, mutating.Load())
}

func TestDispatchMalformed(t *testing.T) {
	d := newTestDispatcher(t)

	bodies := []string{
		`not json`,
		``,
		`[]`,
		`{"jsonrpc":"1.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":1}`,
		`{"jsonrpc":"2.0","id":{},"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":3}`,
	}
	for _, path := range []Path{PathCheap, PathAuthoritative} {
		for _, body := range bodies {
			t.Run(path.String()+"/"+body, func(t *testing.T) {
				out := d.Dispatch(context.Background(), path, []byte(body))
				require.Equal(t, Rejected, out.Kind)
				assert.Equal(t, "null", string(out.Response.ID))
				require.NotNil(t, out.Response.Error)
				assert.Equal(t, jsonrpc.CodeParseError, out.Response.Error.Code)
			})
		}
	}
}

func TestDispatchScenarios(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	t.Run("valid call on authoritative path", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}`
		out := d.Dispatch(ctx, PathAuthoritative, []byte(body))
		require.Equal(t, Answered, out.Kind)
		assert.JSONEq(t,
			`{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"The sum of 2 and 3 is 5"}],"isError":false}}`,
			encodeOutcome(t, out))
	})

	t.Run("valid call on cheap path upgrades", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}`
		out := d.Dispatch(ctx, PathCheap, []byte(body))
		assert.Equal(t, Upgrade, out.Kind)
		assert.Equal(t, RequiresUpgrade, out.Class)
		assert.Nil(t, out.Response)
	})

	t.Run("missing argument", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":2}}}`
		out := d.Dispatch(ctx, PathAuthoritative, []byte(body))
		require.Equal(t, Answered, out.Kind)
		require.NotNil(t, out.Response.Error)
		assert.Equal(t, jsonrpc.CodeInvalidParams, out.Response.Error.Code)
		assert.Equal(t, "Missing argument 'b'", out.Response.Error.Message)
	})

	t.Run("unknown method with id", func(t *testing.T) {
		out := d.Dispatch(ctx, PathCheap, []byte(`{"jsonrpc":"2.0","id":"x","method":"foo"}`))
		require.Equal(t, Answered, out.Kind)
		assert.JSONEq(t,
			`{"jsonrpc":"2.0","id":"x","error":{"code":-32601,"message":"Method not found: foo"}}`,
			encodeOutcome(t, out))
	})

	t.Run("malformed body", func(t *testing.T) {
		out := d.Dispatch(ctx, PathCheap, []byte(`not json`))
		require.Equal(t, Rejected, out.Kind)
		assert.Equal(t, "null", string(out.Response.ID))
		assert.Equal(t, jsonrpc.CodeParseError, out.Response.Error.Code)
	})

	t.Run("initialized notification", func(t *testing.T) {
		out := d.Dispatch(ctx, PathCheap, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
		assert.Equal(t, Ack, out.Kind)
		assert.Nil(t, out.Response)
	})
}

func TestDispatchConcurrent(t *testing.T) {
	d := newTestDispatcher(t)

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := PathCheap
			if i%2 == 1 {
				path = PathAuthoritative
			}
			body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}`
			out := d.Dispatch(context.Background(), path, []byte(body))
			if path == PathCheap {
				assert.Equal(t, Upgrade, out.Kind)
			} else {
				assert.Equal(t, Answered, out.Kind)
				assert.False(t, out.Response.IsError())
			}
		}(i)
	}
	wg.Wait()
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "answered", Answered.String())
	assert.Equal(t, "upgrade", Upgrade.String())
	assert.Equal(t, "ack", Ack.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "cheap", PathCheap.String())
	assert.Equal(t, "authoritative", PathAuthoritative.String())
	assert.Equal(t, "Path(2)", Path(2).String())
	assert.Equal(t, "Path(-1)", Path(-1).String())
}
