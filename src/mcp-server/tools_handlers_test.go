// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAdd(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    string
		isError bool
	}{
		{name: "integers", args: map[string]any{"a": 2.0, "b": 3.0}, want: "The sum of 2 and 3 is 5"},
		{name: "fractions", args: map[string]any{"a": 0.5, "b": 2.0}, want: "The sum of 0.5 and 2 is 2.5"},
		{name: "negative", args: map[string]any{"a": -1.0, "b": 1.0}, want: "The sum of -1 and 1 is 0"},
		{name: "large", args: map[string]any{"a": 1e21, "b": 0.0}, want: "The sum of 1000000000000000000000 and 0 is 1000000000000000000000"},
		{name: "overflow", args: map[string]any{"a": math.MaxFloat64, "b": math.MaxFloat64}, isError: true},
		{name: "missing b", args: map[string]any{"a": 1.0}, isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req mcp.CallToolRequest
			req.Params.Name = "add"
			req.Params.Arguments = tt.args

			res, err := handleAdd(context.Background(), req)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.isError, res.IsError)
			require.Len(t, res.Content, 1)

			if !tt.isError {
				text, ok := res.Content[0].(mcp.TextContent)
				require.True(t, ok)
				assert.Equal(t, tt.want, text.Text)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "5", formatNumber(5))
	assert.Equal(t, "2.5", formatNumber(2.5))
	assert.Equal(t, "0.1", formatNumber(0.1))
	assert.Equal(t, "-0.25", formatNumber(-0.25))
	assert.Equal(t, "100000000", formatNumber(1e8))
}
