// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"
)

// NewLogger returns the logger selected by the logging section of cfg.
// Output goes to stderr.
func NewLogger(cfg *Config) logger.Logger {
	if cfg.Logging.Silent {
		return logger.NewJSONLogger(nil, true)
	}
	if cfg.Logging.Format == "text" {
		l := logger.NewCLILogger()
		l.SetOutput(os.Stderr)
		return l
	}
	return logger.NewJSONLogger(os.Stderr, false)
}

// Run builds the server with the default tools and serves it on
// cfg.Server.Addr until ctx is cancelled.
//
// Parameters:
//   - ctx: Cancelling it starts a graceful shutdown
//   - cfg: Server configuration, see [LoadConfig]
//   - version: Version string reported in serverInfo
//   - log: Logger for the server and its components
//   - banner: Where the startup banner is printed; nil skips it
//
// Returns:
//   - error: Build or listen errors, or a failed shutdown. A shutdown
//     triggered by ctx returns nil.
func Run(ctx context.Context, cfg *Config, version string, log logger.Logger, banner io.Writer) error {
	srv, err := NewServerBuilder().
		WithConfig(cfg).
		WithVersion(version).
		WithLogger(log).
		WithDefaultTools().
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}

	if banner != nil {
		PrintBanner(banner, srv, ln.Addr().String())
	}
	return Serve(ctx, ln, srv)
}

// Serve serves srv on ln and shuts down gracefully when ctx is done.
// The listener is closed on return.
func Serve(ctx context.Context, ln net.Listener, srv *Server) error {
	cfg := srv.Config()
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.ReadTimeoutDuration(),
		ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srv.log.Printf("listening on %s (%s mode)", ln.Addr(), cfg.Server.Mode)
		if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		srv.log.Println("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// PrintBanner prints the startup summary: identity, listen address and the
// routes served in the configured mode.
func PrintBanner(w io.Writer, srv *Server, addr string) {
	cfg := srv.Config()
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	title.Fprintf(w, "%s %s\n", cfg.Protocol.ServerName, srv.Version())
	label.Fprint(w, "  listen    ")
	fmt.Fprintln(w, addr)
	label.Fprint(w, "  mode      ")
	fmt.Fprintln(w, cfg.Server.Mode)
	label.Fprint(w, "  query     ")
	fmt.Fprintln(w, "POST "+cfg.Server.Endpoint)
	label.Fprint(w, "  update    ")
	if cfg.Server.Mode == ModeSplit {
		fmt.Fprintln(w, "POST "+cfg.Server.UpdatePrefix+cfg.Server.Endpoint)
	} else {
		fmt.Fprintln(w, "promoted in-process on "+UpgradeHeader)
	}
	label.Fprint(w, "  tools     ")
	fmt.Fprintln(w, srv.Catalog().Len())
}
