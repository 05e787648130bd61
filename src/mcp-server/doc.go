// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver implements an [MCP] JSON-RPC server that classifies every
// call in two phases.
//
// A delivery first reaches the cheap path, which answers read-only methods
// (initialize, tools/list) directly and asks for an upgrade on anything that
// mutates state (tools/call). The upgraded delivery carries the identical
// bytes to the authoritative path, which executes only methods that require
// it and rejects everything else. The [Dispatcher] is transport-agnostic; the
// HTTP binding renders its [Outcome] as 200, 200 with "X-Upgrade: true", 202
// or 400, and the [Gateway] performs the promotion in-process.
//
// Servers are assembled with [ServerBuilder]:
//
//	srv, err := mcpserver.NewServerBuilder().
//		WithConfig(cfg).
//		WithDefaultTools().
//		Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
