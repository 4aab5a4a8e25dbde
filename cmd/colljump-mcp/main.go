package main

import (
	"context"
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"colljump/internal/adapters/launcher"
	mcpadapter "colljump/internal/adapters/mcp"
	"colljump/internal/adapters/sqlite"
	"colljump/internal/application/commands"
	"colljump/internal/config"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

func main() {
	catalogFlag := flag.String("catalog", config.CatalogPath(), "path to the catalog database")
	levelFlag := flag.String("log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	flag.Parse()

	// stdout carries the protocol
	logger := logging.New(os.Stderr, *levelFlag)

	catalog, err := sqlite.Open(*catalogFlag, sqlite.Options{ReadOnly: true, Logger: logger})
	if err != nil {
		logger.Fatal("open catalog", "err", err)
	}
	defer catalog.Close()

	host := ports.Host{URLLauncher: launcher.New(logger)}
	driver := commands.NewSelectionDriver(host, logger, commands.WithSettleDelay(0))

	mcpServer := server.NewMCPServer(
		"colljump-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, catalog, logger)
	mcpadapter.RegisterJumpTools(mcpServer, catalog, driver, logger)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal("serve", "err", err)
	}
}
