// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/gc"
	mcpserver "github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/mcp-server"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// maxResponseBytes bounds how much of a response body raw will print.
const maxResponseBytes = 4 << 20

func newRawCommand() *cobra.Command {
	var (
		endpoint     string
		updatePrefix string
	)

	cmd := &cobra.Command{
		Use:   "raw BODY",
		Short: "Post a raw JSON-RPC body and follow the upgrade by hand",
		Long: `Post BODY to the cheap entry and print the answer. When the answer asks
for an upgrade, post the identical bytes to the authoritative entry under the
update prefix and print that answer too. Use "-" as BODY to read stdin.

This drives a server running in split mode.`,
		Example: `  raw '{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runRaw(cmd.Context(), http.DefaultClient, cmd.OutOrStdout(), endpoint, updatePrefix, body)
		},
	}

	cmd.Flags().StringVar(&endpoint, "url", defaultURL, "server endpoint URL")
	cmd.Flags().StringVar(&updatePrefix, "update-prefix", mcpserver.DefaultUpdatePrefix, "path prefix of the authoritative entry")
	return cmd
}

func readBody(stdin io.Reader, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	body, err := gc.ReadLimited(stdin, mcpserver.DefaultMaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read body from stdin: %w", err)
	}
	return body, nil
}

// runRaw performs the two legs and prints each of them.
func runRaw(ctx context.Context, hc *http.Client, w io.Writer, endpoint, updatePrefix string, body []byte) error {
	cheapURL, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	updateURL := *cheapURL
	updateURL.Path = strings.TrimRight(updatePrefix, "/") + cheapURL.Path

	id := uuid.NewString()

	status, header, resp, err := post(ctx, hc, cheapURL.String(), id, body)
	if err != nil {
		return err
	}
	printLeg(w, "query", status, header, resp)

	if status != http.StatusOK || header.Get(mcpserver.UpgradeHeader) != "true" {
		return nil
	}

	status, header, resp, err = post(ctx, hc, updateURL.String(), id, body)
	if err != nil {
		return err
	}
	printLeg(w, "update", status, header, resp)
	return nil
}

func post(ctx context.Context, hc *http.Client, target, id string, body []byte) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mcpserver.RequestIDHeader, id)

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("request to %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	data, err := gc.ReadLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response from %s: %w", target, err)
	}
	return resp.StatusCode, resp.Header, data, nil
}

// printLeg writes one leg as "<leg> <status>" plus flags and body.
func printLeg(w io.Writer, leg string, status int, header http.Header, body []byte) {
	statusColor := color.New(color.FgGreen)
	switch {
	case status >= 400:
		statusColor = color.New(color.FgRed)
	case status == http.StatusAccepted:
		statusColor = color.New(color.FgBlue)
	}

	color.New(color.FgCyan, color.Bold).Fprintf(w, "%-6s ", leg)
	statusColor.Fprintf(w, "%d %s", status, http.StatusText(status))
	if header.Get(mcpserver.UpgradeHeader) == "true" {
		color.New(color.FgYellow).Fprintf(w, " %s: true", mcpserver.UpgradeHeader)
	}
	fmt.Fprintln(w)
	if len(body) > 0 {
		fmt.Fprintln(w, string(body))
	}
}
