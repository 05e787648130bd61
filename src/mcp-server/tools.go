// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createTools creates and returns all MCP tool definitions with their handlers.
//
// Returns:
//   - A slice of ToolDefinition in declaration order, which is also the order
//     tools/list reports them in
//
// The function defines the following tools:
//   - add: Adds two numbers (a and b)
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("add",
				mcp.WithDescription("Adds two numbers (a and b)"),
				mcp.WithNumber("a",
					mcp.Required(),
					mcp.Description("The first number"),
				),
				mcp.WithNumber("b",
					mcp.Required(),
					mcp.Description("The second number"),
				),
				mcp.WithTitleAnnotation("Add"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			Handler: handleAdd,
		},
	}
}
