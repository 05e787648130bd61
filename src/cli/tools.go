// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

func newToolsCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := connect(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.ListTools(cmd.Context(), mcp.ListToolsRequest{})
			if err != nil {
				return fmt.Errorf("tools/list failed: %w", err)
			}
			return renderTools(cmd.OutOrStdout(), res.Tools)
		},
	}

	cmd.Flags().StringVar(&url, "url", defaultURL, "server endpoint URL")
	return cmd
}

// renderTools writes tools as a markdown table.
func renderTools(w io.Writer, tools []mcp.Tool) error {
	if len(tools) == 0 {
		_, err := fmt.Fprintln(w, "No tools registered")
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Name", "Description", "Arguments"})

	rows := make([][]string, 0, len(tools))
	for _, tool := range tools {
		rows = append(rows, []string{tool.Name, tool.Description, describeArguments(tool.InputSchema)})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}

// describeArguments renders schema properties as "name:type", with required
// ones marked by a trailing '*'.
func describeArguments(schema mcp.ToolInputSchema) string {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		part := name
		if prop, ok := schema.Properties[name].(map[string]any); ok {
			if typ, ok := prop["type"].(string); ok {
				part += ":" + typ
			}
		}
		if slices.Contains(schema.Required, name) {
			part += "*"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
