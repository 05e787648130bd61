// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/cli"
	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/logger"
	verpkg "github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() { os.Exit(run(os.Args[1:])) }

// run executes the CLI with args and returns the process exit code.
// SIGINT and SIGTERM cancel the command context, which stops serve gracefully.
func run(args []string) int {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(version, log)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Println("Received termination signal. Exiting...")
			return 130
		}
		log.SetOutput(os.Stderr)
		log.Errorf("%v", err)
		return 1
	}
	return 0
}
