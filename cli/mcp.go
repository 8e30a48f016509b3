// ABOUTME: MCP server subcommand
// ABOUTME: Serves the contact directory tools over stdio for Claude Desktop
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcard/handlers"
)

// MCPCommand starts the MCP server on stdio.
func MCPCommand(ctx context.Context, app *App) error {
	app.Log.Info("starting gcard MCP server")

	server := handlers.NewServer(app.Contacts, app.Groups, app.exporter(""), app.DB)
	return server.Run(ctx, &mcp.StdioTransport{})
}
