// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package jsonrpc implements the [JSON-RPC 2.0] envelope codec used by the MCP
// upgrade gateway. It decodes inbound requests and notifications, validating
// the envelope shape only, and encodes success and error responses.
//
// Correlation ids are carried as raw JSON so they are echoed byte-for-byte in
// responses: a numeric id stays numeric, a string id stays a string, and an
// explicit null id is distinguishable from an absent one.
//
// [JSON-RPC 2.0]: https://www.jsonrpc.org/specification
package jsonrpc
