// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Version is the protocol tag carried by every envelope.
const Version = mcp.JSONRPC_VERSION

// Error codes drawn from the JSON-RPC 2.0 standard set.
const (
	// CodeParseError reports a payload that is not a well-formed envelope.
	CodeParseError = mcp.PARSE_ERROR
	// CodeInvalidRequest reports a well-formed envelope that violates path policy.
	CodeInvalidRequest = mcp.INVALID_REQUEST
	// CodeMethodNotFound reports a method absent from the registry.
	CodeMethodNotFound = mcp.METHOD_NOT_FOUND
	// CodeInvalidParams reports missing or mis-typed params or tool arguments.
	CodeInvalidParams = mcp.INVALID_PARAMS
	// CodeInternalError reports a handler failure that is neither a params
	// problem nor a tool domain error.
	CodeInternalError = mcp.INTERNAL_ERROR
)

// nullID is the wire form used when no id could be recovered.
var nullID = json.RawMessage("null")

// Envelope is a decoded inbound JSON-RPC request or notification.
//
// Fields:
//   - JSONRPC: Protocol tag, always [Version] once decoded
//   - ID: Raw correlation token; nil when the field is absent (notification),
//     the literal null when present but null
//   - Method: Method name, not validated against any registry
//   - Params: Raw params; nil when absent or null
type Envelope struct {
	JSONRPC string
	ID      json.RawMessage
	Method  string
	Params  json.RawMessage
}

// IsNotification reports whether the envelope lacks an id field entirely.
// A present-but-null id is still a request expecting a reply.
func (e *Envelope) IsNotification() bool { return e.ID == nil }

// ErrorObject is the JSON-RPC error member of a response.
// It implements error so handlers can return it through ordinary error paths.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ErrorObject) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewError builds an ErrorObject with a formatted message.
func NewError(code int, format string, args ...any) *ErrorObject {
	return &ErrorObject{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithData returns a copy of e carrying the given data member.
func (e *ErrorObject) WithData(data any) *ErrorObject {
	cp := *e
	cp.Data = data
	return &cp
}

// Response is an outbound JSON-RPC response. Exactly one of Result and Error
// is set; use [NewSuccess] and [NewFailure] to build one.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// NewSuccess builds a success response echoing id. The result is marshaled
// eagerly so encoding failures surface here rather than on the wire.
func NewSuccess(id json.RawMessage, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Response{JSONRPC: Version, ID: echoID(id), Result: raw}, nil
}

// NewFailure builds an error response echoing id, or null when id is nil.
func NewFailure(id json.RawMessage, e *ErrorObject) *Response {
	return &Response{JSONRPC: Version, ID: echoID(id), Error: e}
}

// IsError reports whether the response carries an error member.
func (r *Response) IsError() bool { return r.Error != nil }

// echoID returns the id to place on the wire.
func echoID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}
