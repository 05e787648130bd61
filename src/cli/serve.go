// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
	mcpserver "github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/mcp-server"
	"github.com/spf13/cobra"
)

func newServeCommand(version string, log logger.Logger) *cobra.Command {
	var (
		configFile string
		addr       string
		mode       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the server until interrupted",
		Long: `Run the JSON-RPC server on a single POST endpoint.

In gateway mode (the default) calls that need the authoritative path are
promoted in-process. In split mode the cheap entry is served at the root and
the authoritative entry under the update prefix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := mcpserver.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if mode != "" {
				if mode != mcpserver.ModeGateway && mode != mcpserver.ModeSplit {
					return fmt.Errorf("invalid mode %q: want %s or %s", mode, mcpserver.ModeGateway, mcpserver.ModeSplit)
				}
				cfg.Server.Mode = mode
			}

			serverLog := mcpserver.NewLogger(cfg)
			if cfg.Logging.Format == "text" && !cfg.Logging.Silent && log != nil {
				// Server logs stay off stdout.
				log.SetOutput(cmd.ErrOrStderr())
				serverLog = log
			}

			return mcpserver.Run(cmd.Context(), cfg, version, serverLog, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to configuration file (.json, .yaml, .yml, .toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configuration")
	cmd.Flags().StringVar(&mode, "mode", "", "server mode: gateway or split")
	return cmd
}
