package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"colljump/internal/application"
	"colljump/internal/application/commands"
	"colljump/internal/domain"
	"colljump/internal/ports"
)

// RegisterReadTools adds all read-only catalog tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, catalog ports.Catalog, logger *log.Logger) {
	s.AddTool(librariesTool(), librariesHandler(catalog))
	s.AddTool(listTool(), listHandler(catalog, logger))
	s.AddTool(treeTool(), treeHandler(catalog, logger))
	s.AddTool(resolveTool(), resolveHandler(catalog, logger))
}

// --- list_libraries ---

func librariesTool() mcp.Tool {
	return mcp.NewTool("list_libraries",
		mcp.WithDescription("List the user library and every group library in the catalog."),
	)
}

func librariesHandler(catalog ports.Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := catalog.WaitReady(ctx); err != nil {
			return toolError(err)
		}
		libs, err := catalog.Libraries(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(libs, formatLibrary)
	}
}

// --- list_collections ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_collections",
		mcp.WithDescription("List the collections of a library by full path, sorted the way the jump panel shows them. Optionally filtered by a substring of the path."),
		mcp.WithNumber("library_id",
			mcp.Description("Library to list. Omit for the user library."),
		),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring of the collection path"),
		),
	)
}

func listHandler(catalog ports.Catalog, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pane := commands.StaticPane{LibraryID: int64(req.GetInt("library_id", 0))}

		res, err := commands.NewBuildFlatIndexCommand(catalog, pane, logger).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		entries := commands.FilterEntries(res.Entries, req.GetString("query", ""))
		return formatEntities(entries, formatEntry)
	}
}

// --- collection_tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("collection_tree",
		mcp.WithDescription("Display the collections of a library as a tree."),
		mcp.WithNumber("library_id",
			mcp.Description("Library to show. Omit for the user library."),
		),
	)
}

func treeHandler(catalog ports.Catalog, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pane := commands.StaticPane{LibraryID: int64(req.GetInt("library_id", 0))}

		res, err := commands.NewBuildParentIndexCommand(catalog, pane, logger).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if res.Index.Len() == 0 {
			return mcp.NewToolResultText("No collections."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s\n", formatLibrary(res.Library))
		res.Index.Walk(func(r domain.CollectionRecord, depth int) bool {
			fmt.Fprintf(&sb, "%s%s  %s\n", strings.Repeat("  ", depth+1), r.Key, r.Name)
			return true
		})
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- resolve_collection ---

func resolveTool() mcp.Tool {
	return mcp.NewTool("resolve_collection",
		mcp.WithDescription("Resolve a collection id or key to its library, path and zotero://select link."),
		mcp.WithString("id",
			mcp.Description("Numeric collection id or 8-character collection key"),
			mcp.Required(),
		),
	)
}

func resolveHandler(catalog ports.Catalog, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := rawID(req)
		if err != nil {
			return toolError(err)
		}
		id, err := domain.Normalize(raw)
		if err != nil {
			return toolError(err)
		}

		resolved, err := commands.NewResolveCommand(catalog, id, logger).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		path := resolved.Record.Name
		if records, err := catalog.CollectionsByLibrary(ctx, resolved.LibraryID(), true); err == nil {
			if p, err := domain.NewPathComposer(records).Compose(resolved.Record); err == nil {
				path = p
			}
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "id: %d\n", resolved.CollectionID())
		fmt.Fprintf(&sb, "key: %s\n", resolved.Key())
		fmt.Fprintf(&sb, "path: %s\n", path)
		fmt.Fprintf(&sb, "library: %s\n", formatLibrary(resolved.Library))
		if uri, err := domain.SelectURI(*resolved); err == nil {
			fmt.Fprintf(&sb, "uri: %s\n", uri)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

// rawID returns the id argument as the client sent it. Numbers arrive as
// float64 and go through the same normalization as panel rows.
func rawID(req mcp.CallToolRequest) (any, error) {
	v, ok := req.GetArguments()["id"]
	s, isString := v.(string)
	if !ok || isString {
		if err := application.ValidateRequired("identifier", s); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatLibrary(l domain.Library) string {
	if l.IsUser() {
		return fmt.Sprintf("%d  %s (user)", l.ID, l.Name)
	}
	return fmt.Sprintf("%d  %s (group %d)", l.ID, l.Name, l.GroupID)
}

func formatEntry(e domain.PathEntry) string {
	return fmt.Sprintf("%s  %s  %s", e.ID, e.Key, e.Path)
}
