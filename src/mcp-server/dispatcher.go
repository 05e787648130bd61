// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
)

// Path identifies the execution context a delivery arrived on.
type Path int

const (
	// PathCheap is the read-only context that answers Direct methods and
	// redirects everything that mutates state.
	PathCheap Path = iota
	// PathAuthoritative is the context where state-mutating methods run. It is
	// reached only through an upgrade.
	PathAuthoritative
)

// String returns the path name used in logs.
func (p Path) String() string {
	switch p {
	case PathCheap:
		return "cheap"
	case PathAuthoritative:
		return "authoritative"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// OutcomeKind tags the variant held by an [Outcome].
type OutcomeKind int

const (
	// Answered carries a JSON-RPC response to write inline. The response may
	// hold a result or a method-level error.
	Answered OutcomeKind = iota
	// Upgrade asks the transport to re-deliver the identical request bytes to
	// the authoritative path. No JSON-RPC payload is produced.
	Upgrade
	// Ack acknowledges a notification. No JSON-RPC payload is produced.
	Ack
	// Rejected carries an error response for input that is malformed or out
	// of policy for the path.
	Rejected
)

// String returns the outcome name used in logs.
func (k OutcomeKind) String() string {
	switch k {
	case Answered:
		return "answered"
	case Upgrade:
		return "upgrade"
	case Ack:
		return "ack"
	default:
		return "rejected"
	}
}

// Outcome is the transport-agnostic result of one dispatcher run.
//
// Fields:
//   - Kind: Which variant this is
//   - Response: The response for Answered and Rejected; nil otherwise
//   - Method: The decoded method name, empty when decoding failed
//   - Class: The classification consulted for Method
type Outcome struct {
	Kind     OutcomeKind
	Response *jsonrpc.Response
	Method   string
	Class    Classification
}

// action is what the policy table prescribes for a classified request.
// The zero value rejects, so a missing table entry never executes.
type action int

const (
	actRejectForPath action = iota
	actExecute
	actRedirect
	actMethodNotFound
)

// policyKey indexes the policy table.
type policyKey struct {
	class Classification
	path  Path
}

// policy is the single routing table for requests that carry an id.
// Notifications and decode failures are settled before it is consulted.
var policy = map[policyKey]action{
	{Direct, PathCheap}:                  actExecute,
	{RequiresUpgrade, PathCheap}:         actRedirect,
	{Unknown, PathCheap}:                 actMethodNotFound,
	{Direct, PathAuthoritative}:          actRejectForPath,
	{RequiresUpgrade, PathAuthoritative}: actExecute,
	{Unknown, PathAuthoritative}:         actRejectForPath,
}

// recognizedNotifications are logged as handled; any other notification is
// acknowledged all the same.
var recognizedNotifications = map[string]bool{
	"notifications/initialized": true,
	"notifications/cancelled":   true,
}

// Dispatcher routes decoded envelopes through the registry according to the
// path they arrived on.
//
// A Dispatcher holds only immutable state, so a single instance serves any
// number of concurrent deliveries on both paths. The cheap and authoritative
// runs for one request share nothing: the authoritative run decodes and
// classifies the forwarded bytes from scratch.
type Dispatcher struct {
	registry *Registry
	log      logger.Logger
}

// NewDispatcher creates a dispatcher over a registry.
// A nil log discards output.
func NewDispatcher(registry *Registry, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewJSONLogger(nil, true)
	}
	return &Dispatcher{registry: registry, log: log}
}

// Dispatch runs one delivery: decode, classify, then execute, redirect or reject.
//
// Parameters:
//   - ctx: Context passed to method handlers
//   - path: The path the delivery arrived on
//   - body: The raw request bytes, exactly as received
//
// Returns:
//   - Outcome: The tagged result for the transport to render
func (d *Dispatcher) Dispatch(ctx context.Context, path Path, body []byte) Outcome {
	env, err := jsonrpc.Decode(body)
	if err != nil {
		var decodeErr *jsonrpc.DecodeError
		rpcErr := jsonrpc.NewError(jsonrpc.CodeParseError, "Parse error")
		if errors.As(err, &decodeErr) {
			rpcErr = decodeErr.Object()
		}
		d.log.Printf("%s path: %v", path, err)
		return Outcome{Kind: Rejected, Response: jsonrpc.NewFailure(nil, rpcErr)}
	}

	if env.IsNotification() {
		return d.notification(path, env)
	}

	class := d.registry.Classify(env.Method)
	out := Outcome{Method: env.Method, Class: class}

	act, ok := policy[policyKey{class, path}]
	if !ok {
		d.log.Printf("%s path: no policy for %s method %s", path, class, env.Method)
		out.Kind = Rejected
		out.Response = jsonrpc.NewFailure(env.ID,
			jsonrpc.NewError(jsonrpc.CodeInvalidRequest, "Unsupported path for method: %s", env.Method))
		return out
	}

	switch act {
	case actExecute:
		d.log.Printf("%s path: handling %s", path, env.Method)
		out.Kind = Answered
		out.Response = d.execute(ctx, env)

	case actRedirect:
		d.log.Printf("%s path: requesting upgrade for %s", path, env.Method)
		out.Kind = Upgrade

	case actMethodNotFound:
		d.log.Printf("%s path: method not found: %s", path, env.Method)
		out.Kind = Answered
		out.Response = jsonrpc.NewFailure(env.ID,
			jsonrpc.NewError(jsonrpc.CodeMethodNotFound, "Method not found: %s", env.Method))

	case actRejectForPath:
		d.log.Printf("%s path: invalid method for update call: %s", path, env.Method)
		out.Kind = Rejected
		out.Response = jsonrpc.NewFailure(env.ID,
			jsonrpc.NewError(jsonrpc.CodeMethodNotFound, "Invalid method for update call: %s", env.Method))
	}

	return out
}

// notification settles a delivery without an id. Only the cheap path
// acknowledges; notifications are never upgraded, so any other path rejects.
func (d *Dispatcher) notification(path Path, env *jsonrpc.Envelope) Outcome {
	out := Outcome{Method: env.Method, Class: d.registry.Classify(env.Method)}

	if path != PathCheap {
		d.log.Printf("%s path: rejecting notification %s", path, env.Method)
		out.Kind = Rejected
		out.Response = jsonrpc.NewFailure(nil,
			jsonrpc.NewError(jsonrpc.CodeInvalidRequest, "Cannot process notifications in update call"))
		return out
	}

	if recognizedNotifications[env.Method] {
		d.log.Printf("%s path: notification %s", path, env.Method)
	} else {
		d.log.Printf("%s path: ignoring notification %s", path, env.Method)
	}
	out.Kind = Ack
	return out
}

// execute runs the handler and wraps its result or error into a response.
func (d *Dispatcher) execute(ctx context.Context, env *jsonrpc.Envelope) *jsonrpc.Response {
	result, rpcErr := d.registry.Dispatch(ctx, env.Method, env.Params)
	if rpcErr != nil {
		return jsonrpc.NewFailure(env.ID, rpcErr)
	}

	resp, err := jsonrpc.NewSuccess(env.ID, result)
	if err != nil {
		d.log.Errorf("encoding result of %s: %v", env.Method, err)
		return jsonrpc.NewFailure(env.ID,
			jsonrpc.NewError(jsonrpc.CodeInternalError, "%s", fmt.Sprintf("Internal error: %v", err)))
	}
	return resp
}
