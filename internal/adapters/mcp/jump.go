package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"colljump/internal/application/commands"
	"colljump/internal/ports"
)

// RegisterJumpTools adds the tools that drive the host to the MCP server.
func RegisterJumpTools(s *server.MCPServer, catalog ports.Catalog, driver *commands.SelectionDriver, logger *log.Logger) {
	s.AddTool(jumpTool(), jumpHandler(catalog, driver, logger))
}

// --- jump_to_collection ---

func jumpTool() mcp.Tool {
	return mcp.NewTool("jump_to_collection",
		mcp.WithDescription("Select a collection in the running reference manager. Tries every available selection strategy and reports each attempt."),
		mcp.WithString("id",
			mcp.Description("Numeric collection id or 8-character collection key"),
			mcp.Required(),
		),
	)
}

func jumpHandler(catalog ports.Catalog, driver *commands.SelectionDriver, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := rawID(req)
		if err != nil {
			return toolError(err)
		}
		result, err := commands.NewJumpCommand(catalog, driver, raw, logger).Execute(ctx)
		if err != nil {
			if result == nil || result.Report == nil {
				return toolError(err)
			}
			return mcp.NewToolResultError(fmt.Sprintf("%v\n%s", err, formatAttempts(result.Report))), nil
		}
		return mcp.NewToolResultText(result.Message + "\n" + formatAttempts(result.Report)), nil
	}
}

func formatAttempts(report *commands.SelectionReport) string {
	var sb strings.Builder
	for _, a := range report.Attempts {
		fmt.Fprintf(&sb, "%s: %s", a.Strategy, a.Outcome)
		if a.Err != nil {
			fmt.Fprintf(&sb, " (%v)", a.Err)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
