// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
	"github.com/spf13/cobra"
)

// defaultURL is the endpoint the client commands talk to unless --url is given.
const defaultURL = "http://127.0.0.1:8080/mcp"

// Execute runs the root command with os.Args.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewRootCommand(version, log).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. The log is used by serve when the
// configuration selects text logging; client commands write to the command's
// output streams.
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	exeName := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:           exeName,
		Short:         "MCP JSON-RPC server with two-phase call classification",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCommand(version, log),
		newToolsCommand(),
		newCallCommand(),
		newRawCommand(),
	)
	return rootCmd
}
