// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bytes"
	"io"
	"net/http"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
	"github.com/google/uuid"
)

// Gateway promotes deliveries from the cheap entry to the authoritative one.
//
// Every request is first served by the query handler into a buffer. When that
// answer carries "X-Upgrade: true", the gateway discards it and re-delivers
// the identical method, URL, headers and body bytes to the update handler,
// whose answer is returned to the client as-is. Any other cheap answer is
// copied through unchanged.
//
// Both legs see the same X-Request-Id, taken from the incoming request or
// generated when absent, and the id is echoed on the final response.
type Gateway struct {
	query   http.Handler
	update  http.Handler
	maxBody int64
	log     logger.Logger
	newID   func() string
}

// NewGateway creates a gateway over the two entries.
func NewGateway(query, update http.Handler, maxBody int64, log logger.Logger) *Gateway {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	if log == nil {
		log = logger.NewJSONLogger(nil, true)
	}
	return &Gateway{
		query:   query,
		update:  update,
		maxBody: maxBody,
		log:     log,
		newID:   uuid.NewString,
	}
}

// ServeHTTP implements [http.Handler].
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := gc.ReadLimited(r.Body, g.maxBody)
	if err != nil {
		g.log.Printf("gateway: reading body: %v", err)
		writeBodyError(w, err, g.maxBody)
		return
	}

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = g.newID()
	}
	w.Header().Set(RequestIDHeader, id)

	rec := newRecorder()
	defer rec.release()

	g.query.ServeHTTP(rec, replay(r, body, id))

	if rec.status != http.StatusOK || rec.header.Get(UpgradeHeader) != "true" {
		rec.copyTo(w)
		return
	}

	g.log.Printf("gateway: promoting delivery %s", id)
	g.update.ServeHTTP(w, replay(r, body, id))
}

// replay clones r with a fresh reader over body.
func replay(r *http.Request, body []byte, id string) *http.Request {
	req := r.Clone(r.Context())
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.Header.Set(RequestIDHeader, id)
	return req
}

// recorder buffers a response so the gateway can decide whether to forward it.
type recorder struct {
	header http.Header
	status int
	body   gc.Buffer
	wrote  bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK, body: gc.Default.Get()}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.wrote {
		return
	}
	r.status = status
	r.wrote = true
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wrote = true
	return r.body.Write(p)
}

// copyTo writes the recorded response to w.
func (r *recorder) copyTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = v
	}
	w.WriteHeader(r.status)
	if r.body.Len() > 0 {
		_, _ = w.Write(r.body.Bytes())
	}
}

func (r *recorder) release() { gc.Default.Put(r.body) }
