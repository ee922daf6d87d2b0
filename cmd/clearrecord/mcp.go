// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clearrecordproj/clearrecord/internal/tool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the screener as MCP tools: evaluate_eligibility, generate_filing_package,
list_offenses and parse_case_file.

Transports:
- stdio (default): for local clients that launch clearrecord as a subprocess.
- streamable HTTP: when --http or mcp.http_addr is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		srv := tool.NewServer(tool.New(a.service, a.cfg.Rules.DefaultJurisdiction), version)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		httpAddr := a.cfg.MCP.HTTPAddr
		if cmd.Flags().Changed("http") {
			httpAddr, _ = cmd.Flags().GetString("http")
		}
		if httpAddr != "" {
			a.logger.Info("mcp server listening", "addr", httpAddr)
			return srv.RunHTTP(ctx, httpAddr)
		}
		a.logger.Info("mcp server running on stdio")
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("http", "", "Serve the streamable HTTP transport on this address instead of stdio")
}
