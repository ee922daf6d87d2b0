// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is the MCP server exposing the screening tools.
type Server struct {
	server *mcp.Server
}

func NewServer(tools *Tools, version string) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "clearrecord",
		Version: version,
	}, nil)

	mcp.AddTool(server, MetadataEvaluateEligibility, tools.EvaluateEligibility)
	mcp.AddTool(server, MetadataGenerateFilingPackage, tools.GenerateFilingPackage)
	mcp.AddTool(server, MetadataListOffenses, tools.ListOffenses)
	mcp.AddTool(server, MetadataParseCaseFile, tools.ParseCaseFile)

	return &Server{server: server}
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// MCPServer returns the underlying server, used by in-memory tests.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
