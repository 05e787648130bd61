// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleAdd adds the numeric arguments a and b.
//
// Arguments have already been validated against the tool schema by the
// catalog; the Require calls only guard direct use of the handler.
//
// Returns:
//   - A text result such as "The sum of 2 and 3 is 5"
//   - An error result (isError: true) when the sum is not a finite number
func handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := request.RequireFloat("a")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("argument 'a' required: %v", err)), nil
	}
	b, err := request.RequireFloat("b")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("argument 'b' required: %v", err)), nil
	}

	sum := a + b
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return mcp.NewToolResultError(fmt.Sprintf("The sum of %s and %s is not a finite number",
			formatNumber(a), formatNumber(b))), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("The sum of %s and %s is %s",
		formatNumber(a), formatNumber(b), formatNumber(sum))), nil
}

// formatNumber renders f in the shortest decimal form without an exponent,
// so 5 prints as "5" and 2.5 as "2.5".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
