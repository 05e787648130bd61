// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"errors"
	"net/http"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
)

// HTTP headers used by the binding.
const (
	// UpgradeHeader is set to "true" on a cheap-path response that asks the
	// router to re-deliver the request to the authoritative entry.
	UpgradeHeader = "X-Upgrade"
	// RequestIDHeader carries the delivery id shared by both legs of a
	// promoted request.
	RequestIDHeader = "X-Request-Id"

	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// entry binds one dispatcher path to HTTP.
type entry struct {
	dispatcher *Dispatcher
	path       Path
	endpoint   string
	maxBody    int64
	log        logger.Logger
}

// NewQueryHandler returns the cheap-path HTTP entry.
//
// Only POST to endpoint is served; anything else is answered with 404 and a
// plain-text body. Outcomes are rendered as:
//
//   - Answered: 200 with the JSON-RPC response
//   - Upgrade: 200 with an empty body and "X-Upgrade: true"
//   - Ack: 202 with an empty body
//   - Rejected: 400 with the JSON-RPC error
func NewQueryHandler(d *Dispatcher, endpoint string, maxBody int64, log logger.Logger) http.Handler {
	return newEntry(d, PathCheap, endpoint, maxBody, log)
}

// NewUpdateHandler returns the authoritative-path HTTP entry.
//
// Only POST to endpoint is served; anything else is answered with 400 and a
// plain-text body. Rendering matches [NewQueryHandler], except that out of
// policy deliveries and notifications come back as 400 JSON-RPC errors.
func NewUpdateHandler(d *Dispatcher, endpoint string, maxBody int64, log logger.Logger) http.Handler {
	return newEntry(d, PathAuthoritative, endpoint, maxBody, log)
}

func newEntry(d *Dispatcher, path Path, endpoint string, maxBody int64, log logger.Logger) *entry {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	if log == nil {
		log = logger.NewJSONLogger(nil, true)
	}
	return &entry{dispatcher: d, path: path, endpoint: endpoint, maxBody: maxBody, log: log}
}

// ServeHTTP implements [http.Handler].
func (e *entry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != e.endpoint {
		e.log.Printf("%s path: refusing %s %s", e.path, r.Method, r.URL.Path)
		if e.path == PathCheap {
			writeText(w, http.StatusNotFound, "Not Found or Method Not Allowed. Use POST to "+e.endpoint)
		} else {
			writeText(w, http.StatusBadRequest, "Bad Request: Update call received for invalid method or URL")
		}
		return
	}

	body, err := gc.ReadLimited(r.Body, e.maxBody)
	if err != nil {
		e.log.Printf("%s path: reading body: %v", e.path, err)
		writeBodyError(w, err, e.maxBody)
		return
	}

	out := e.dispatcher.Dispatch(r.Context(), e.path, body)
	if id := r.Header.Get(RequestIDHeader); id != "" {
		e.log.Printf("%s path: delivery %s %s", e.path, id, out.Kind)
	}
	e.render(w, out)
}

// render writes an outcome using the status mapping of the binding.
func (e *entry) render(w http.ResponseWriter, out Outcome) {
	switch out.Kind {
	case Upgrade:
		w.Header().Set(UpgradeHeader, "true")
		w.WriteHeader(http.StatusOK)
	case Ack:
		w.WriteHeader(http.StatusAccepted)
	case Answered:
		e.writeResponse(w, http.StatusOK, out.Response)
	default:
		e.writeResponse(w, http.StatusBadRequest, out.Response)
	}
}

func (e *entry) writeResponse(w http.ResponseWriter, status int, resp *jsonrpc.Response) {
	data, err := jsonrpc.Encode(resp)
	if err != nil {
		e.log.Errorf("%s path: encoding response: %v", e.path, err)
		data, _ = jsonrpc.EncodeError(resp.ID, jsonrpc.CodeInternalError, "Internal error", nil)
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, data)
}

// writeBodyError rejects a delivery whose body could not be read.
func writeBodyError(w http.ResponseWriter, err error, limit int64) {
	var rpcErr *jsonrpc.ErrorObject
	if errors.Is(err, gc.ErrTooLarge) {
		rpcErr = jsonrpc.NewError(jsonrpc.CodeInvalidRequest, "Request body exceeds %d bytes", limit)
	} else {
		rpcErr = jsonrpc.NewError(jsonrpc.CodeInvalidRequest, "Failed to read request body")
	}
	data, _ := jsonrpc.Encode(jsonrpc.NewFailure(nil, rpcErr))
	writeJSON(w, http.StatusBadRequest, data)
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
