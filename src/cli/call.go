// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// ErrToolFailed is returned by call when the tool reports a domain error.
var ErrToolFailed = errors.New("tool reported an error")

func newCallCommand() *cobra.Command {
	var (
		url  string
		args []string
	)

	cmd := &cobra.Command{
		Use:   "call NAME",
		Short: "Call a tool on a running server",
		Example: `  call add --arg a=2 --arg b=3
  call add --url http://127.0.0.1:9000/mcp --arg a=0.5 --arg b=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			arguments, err := parseArguments(args)
			if err != nil {
				return err
			}

			c, err := connect(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.CallTool(cmd.Context(), mcp.CallToolRequest{
				Params: mcp.CallToolParams{Name: positional[0], Arguments: arguments},
			})
			if err != nil {
				return fmt.Errorf("tools/call failed: %w", err)
			}

			if err := printContent(cmd.OutOrStdout(), res.Content); err != nil {
				return err
			}
			if res.IsError {
				return ErrToolFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", defaultURL, "server endpoint URL")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "tool argument as key=value; repeatable")
	return cmd
}

// parseArguments turns key=value pairs into tool arguments. Values that parse
// as numbers become float64, true and false become booleans, everything else
// stays a string.
func parseArguments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: want key=value", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[key] = f
			continue
		}
		switch value {
		case "true":
			out[key] = true
		case "false":
			out[key] = false
		default:
			out[key] = value
		}
	}
	return out, nil
}

// printContent writes text content one item per line. Other content types are
// summarized by their type.
func printContent(w io.Writer, content []mcp.Content) error {
	for _, item := range content {
		var err error
		switch c := item.(type) {
		case mcp.TextContent:
			_, err = fmt.Fprintln(w, c.Text)
		case mcp.ImageContent:
			_, err = fmt.Fprintf(w, "[image %s]\n", c.MIMEType)
		default:
			_, err = fmt.Fprintf(w, "[%T]\n", c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
