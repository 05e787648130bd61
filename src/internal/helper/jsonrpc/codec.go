// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/gc"
)

// DecodeError reports that a payload could not be decoded into an [Envelope].
// It always maps to [CodeParseError].
type DecodeError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return "parse error: " + e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error { return e.Err }

// Object converts the decode failure into a wire error object.
func (e *DecodeError) Object() *ErrorObject {
	return NewError(CodeParseError, "Parse error: %s", e.Reason)
}

// Decode parses raw bytes into an [Envelope].
//
// It validates shape only:
//   - the payload must be a single JSON object (batches are not supported)
//   - "jsonrpc" must be the string "2.0"
//   - "method" must be present and a string
//   - "id", when present, must be a string, number or null
//   - "params", when present and not null, must be an object or array
//
// Unknown members are ignored. Method names are not checked here.
//
// Parameters:
//   - data: Raw request body
//
// Returns:
//   - *Envelope: The decoded envelope
//   - error: A *DecodeError when the payload is malformed
func Decode(data []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	if fields == nil {
		// The literal null unmarshals into a nil map without error.
		return nil, &DecodeError{Reason: "envelope must be a JSON object"}
	}

	env := &Envelope{}

	rawVersion, ok := fields["jsonrpc"]
	if !ok {
		return nil, &DecodeError{Reason: `missing "jsonrpc" member`}
	}
	if err := json.Unmarshal(rawVersion, &env.JSONRPC); err != nil || kindOf(rawVersion) != kindString {
		return nil, &DecodeError{Reason: `"jsonrpc" must be a string`, Err: err}
	}
	if env.JSONRPC != Version {
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported jsonrpc version %q", env.JSONRPC)}
	}

	rawMethod, ok := fields["method"]
	if !ok {
		return nil, &DecodeError{Reason: `missing "method" member`}
	}
	if kindOf(rawMethod) != kindString {
		return nil, &DecodeError{Reason: `"method" must be a string`}
	}
	if err := json.Unmarshal(rawMethod, &env.Method); err != nil {
		return nil, &DecodeError{Reason: `"method" must be a string`, Err: err}
	}

	if rawID, ok := fields["id"]; ok {
		switch kindOf(rawID) {
		case kindString, kindNumber, kindNull:
			env.ID = compact(rawID)
		default:
			return nil, &DecodeError{Reason: `"id" must be a string, number or null`}
		}
	}

	if rawParams, ok := fields["params"]; ok {
		switch kindOf(rawParams) {
		case kindNull:
			// Treated as absent.
		case kindObject, kindArray:
			env.Params = rawParams
		default:
			return nil, &DecodeError{Reason: `"params" must be an object or array`}
		}
	}

	return env, nil
}

// Encode serializes a response, enforcing that exactly one of result and
// error is present.
func Encode(resp *Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("nil response")
	}
	hasResult := len(resp.Result) > 0
	if hasResult == resp.IsError() {
		return nil, errors.New("response must carry exactly one of result or error")
	}

	out := *resp
	out.JSONRPC = Version
	out.ID = echoID(resp.ID)

	buf := gc.Default.Get()
	defer gc.Default.Put(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	// Encoder terminates each value with a newline; the wire form does not.
	return bytes.TrimRight(gc.Clone(buf), "\n"), nil
}

// EncodeSuccess serializes a success response echoing id.
func EncodeSuccess(id json.RawMessage, result any) ([]byte, error) {
	resp, err := NewSuccess(id, result)
	if err != nil {
		return nil, err
	}
	return Encode(resp)
}

// EncodeError serializes an error response. A nil id is written as null, which
// is how parse-time failures without a recoverable id are reported.
func EncodeError(id json.RawMessage, code int, message string, data any) ([]byte, error) {
	return Encode(NewFailure(id, &ErrorObject{Code: code, Message: message, Data: data}))
}

// DecodeResponse parses an encoded response, as produced by [Encode].
// It is used by clients of the gateway and enforces result XOR error.
func DecodeResponse(data []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	if fields == nil {
		return nil, &DecodeError{Reason: "response must be a JSON object"}
	}

	resp := &Response{}
	if err := json.Unmarshal(fields["jsonrpc"], &resp.JSONRPC); err != nil || resp.JSONRPC != Version {
		return nil, &DecodeError{Reason: "missing or unsupported jsonrpc version", Err: err}
	}

	rawID, ok := fields["id"]
	if !ok {
		return nil, &DecodeError{Reason: `missing "id" member`}
	}
	resp.ID = compact(rawID)

	rawResult, hasResult := fields["result"]
	rawError, hasError := fields["error"]
	if hasResult == hasError {
		return nil, &DecodeError{Reason: "response must carry exactly one of result or error"}
	}
	if hasResult {
		resp.Result = rawResult
		return resp, nil
	}

	resp.Error = &ErrorObject{}
	if err := json.Unmarshal(rawError, resp.Error); err != nil {
		return nil, &DecodeError{Reason: "malformed error member", Err: err}
	}
	return resp, nil
}

// jsonKind is the JSON value type of a raw message.
type jsonKind int

const (
	kindInvalid jsonKind = iota
	kindNull
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// kindOf classifies raw JSON by its first significant byte. The input is
// assumed to be a single well-formed value, as produced by json.Unmarshal.
func kindOf(raw json.RawMessage) jsonKind {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return kindInvalid
	}
	switch c := trimmed[0]; {
	case c == 'n':
		return kindNull
	case c == 't' || c == 'f':
		return kindBool
	case c == '"':
		return kindString
	case c == '[':
		return kindArray
	case c == '{':
		return kindObject
	case c == '-' || (c >= '0' && c <= '9'):
		return kindNumber
	}
	return kindInvalid
}

// compact trims insignificant whitespace around a scalar id without touching
// its textual form, so 1.0 stays 1.0 and "01" stays "01".
func compact(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	out := make(json.RawMessage, len(trimmed))
	copy(out, trimmed)
	return out
}
