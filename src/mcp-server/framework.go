// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/version"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolHandler is the signature every tool implementation satisfies.
//
// A returned error is reported to the caller as an internal JSON-RPC error.
// Domain failures belong in the result with IsError set, as produced by
// [mcp.NewToolResultError].
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolDefinition holds a tool definition and its handler.
//
// Fields:
//   - Tool: The MCP tool definition with name, description and input schema
//   - Handler: The function executed by tools/call
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// ServerDependencies holds all dependencies collected by [ServerBuilder].
// This struct is used internally by ServerBuilder and should not be instantiated directly.
type ServerDependencies struct {
	Config  *Config
	Version string
	Logger  logger.Logger
	Tools   []ToolDefinition
	Methods []Method
}

// ServerBuilder helps construct the server with proper dependencies using a fluent interface.
//
// Example usage:
//
//	srv, err := NewServerBuilder().
//		WithConfig(cfg).
//		WithVersion(version.Version).
//		WithDefaultTools().
//		Build()
//	if err != nil {
//		return err
//	}
//	http.ListenAndServe(cfg.Server.Addr, srv.Handler())
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a new server builder with default empty dependencies.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the server configuration. A nil config selects [DefaultConfig].
func (b *ServerBuilder) WithConfig(config *Config) *ServerBuilder {
	b.deps.Config = config
	return b
}

// WithVersion sets the version reported in serverInfo.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithLogger sets the logger shared by the dispatcher and the HTTP entries.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.deps.Logger = log
	return b
}

// WithTools adds custom tools to the catalog.
// Tools are listed in the order they are added.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithDefaultTools adds the built-in tools.
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	return b.WithTools(createTools()...)
}

// WithMethods registers extra JSON-RPC methods next to initialize, tools/list
// and tools/call. Names must not collide with the built-in ones.
func (b *ServerBuilder) WithMethods(methods ...Method) *ServerBuilder {
	b.deps.Methods = append(b.deps.Methods, methods...)
	return b
}

// Build validates the dependencies and assembles the server.
//
// Returns:
//   - A ready [Server]
//   - An error if a tool schema does not compile or the method table is invalid
func (b *ServerBuilder) Build() (*Server, error) {
	cfg := b.deps.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ver := b.deps.Version
	if ver == "" {
		ver = version.Version
	}
	log := b.deps.Logger
	if log == nil {
		log = logger.NewJSONLogger(nil, true)
	}

	catalog, err := NewCatalog(b.deps.Tools...)
	if err != nil {
		return nil, fmt.Errorf("building tool catalog: %w", err)
	}

	info := InitializeResult{
		ProtocolVersion: cfg.Protocol.Version,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: cfg.Protocol.ServerName, Version: ver},
		Instructions:    cfg.Protocol.Instructions,
	}

	methods := append(defaultMethods(info, catalog), b.deps.Methods...)
	registry, err := NewRegistry(methods...)
	if err != nil {
		return nil, fmt.Errorf("building method registry: %w", err)
	}

	dispatcher := NewDispatcher(registry, component(log, "dispatcher"))
	query := NewQueryHandler(dispatcher, cfg.Server.Endpoint, cfg.Server.MaxBodyBytes, component(log, "query"))
	update := NewUpdateHandler(dispatcher, cfg.Server.Endpoint, cfg.Server.MaxBodyBytes, component(log, "update"))

	return &Server{
		config:     cfg,
		version:    ver,
		catalog:    catalog,
		registry:   registry,
		dispatcher: dispatcher,
		query:      query,
		update:     update,
		gateway:    NewGateway(query, update, cfg.Server.MaxBodyBytes, component(log, "gateway")),
		log:        log,
	}, nil
}

// component tags a JSON logger with a component name; other loggers are
// returned unchanged.
func component(log logger.Logger, name string) logger.Logger {
	if j, ok := log.(*logger.JSONLogger); ok {
		return j.With(name)
	}
	return log
}

// Server is an assembled dispatcher with its HTTP entries.
type Server struct {
	config     *Config
	version    string
	catalog    *Catalog
	registry   *Registry
	dispatcher *Dispatcher
	query      http.Handler
	update     http.Handler
	gateway    *Gateway
	log        logger.Logger
}

// Config returns the configuration the server was built with.
func (s *Server) Config() *Config { return s.config }

// Version returns the version reported in serverInfo.
func (s *Server) Version() string { return s.version }

// Catalog returns the tool catalog.
func (s *Server) Catalog() *Catalog { return s.catalog }

// Registry returns the method registry.
func (s *Server) Registry() *Registry { return s.registry }

// Dispatcher returns the transport-agnostic dispatcher.
func (s *Server) Dispatcher() *Dispatcher { return s.dispatcher }

// QueryHandler returns the cheap-path HTTP entry.
func (s *Server) QueryHandler() http.Handler { return s.query }

// UpdateHandler returns the authoritative-path HTTP entry.
func (s *Server) UpdateHandler() http.Handler { return s.update }

// Handler returns the public handler for the configured mode.
//
// In gateway mode every request goes through the [Gateway]. In split mode the
// cheap entry answers at the root and the authoritative entry is mounted
// under the update prefix, so "POST /_update/mcp" reaches it as "POST /mcp".
func (s *Server) Handler() http.Handler {
	if s.config.Server.Mode != ModeSplit {
		return s.gateway
	}

	prefix := s.config.Server.UpdatePrefix
	mux := http.NewServeMux()
	mux.Handle(prefix+"/", http.StripPrefix(prefix, s.update))
	mux.Handle("/", s.query)
	return mux
}
