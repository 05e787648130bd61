// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the MCP upgrade gateway.
//
// It implements a Cobra-based CLI with four commands:
//   - serve: Runs the server until interrupted
//   - tools: Lists the tools of a running server as a markdown table
//   - call: Invokes one tool with key=value arguments
//   - raw: Posts a raw JSON-RPC body and follows the upgrade by hand,
//     printing each leg, for servers running in split mode
package cli
