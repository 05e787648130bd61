// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Command mcp-upgrade-gateway runs the MCP upgrade gateway and its client tools.
//
// Usage:
//
//	mcp-upgrade-gateway serve [--config FILE] [--addr ADDR] [--mode gateway|split]
//	mcp-upgrade-gateway tools [--url URL]
//	mcp-upgrade-gateway call NAME [--url URL] [--arg key=value]...
//	mcp-upgrade-gateway raw [--url URL] [--update-prefix PREFIX] BODY
package main
