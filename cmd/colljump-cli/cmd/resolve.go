package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"colljump/internal/adapters/sqlite"
	"colljump/internal/application"
	"colljump/internal/application/commands"
	"colljump/internal/domain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id-or-key>",
	Short: "Show the collection an id or key refers to",
	Long: `Resolve a numeric collection id or an 8-character key. An id that matches
no collection is retried as a key, since keys may consist of digits only.

Examples:
  colljump-cli resolve 42
  colljump-cli resolve ABCD1234`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cat, err := GetCatalog()
		if err != nil {
			return err
		}
		resolved, err := resolveArg(ctx, cat, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %d\n", resolved.CollectionID())
		fmt.Fprintf(out, "Key:     %s\n", resolved.Key())
		fmt.Fprintf(out, "Path:    %s\n", collectionPath(ctx, cat, *resolved))
		fmt.Fprintf(out, "Library: %s (%d)\n", resolved.Library.Name, resolved.LibraryID())
		if uri, err := domain.SelectURI(*resolved); err == nil {
			fmt.Fprintf(out, "URI:     %s\n", uri)
		}
		return nil
	},
}

var uriCmd = &cobra.Command{
	Use:   "uri <id-or-key>",
	Short: "Print the zotero://select link of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cat, err := GetCatalog()
		if err != nil {
			return err
		}
		resolved, err := resolveArg(ctx, cat, args[0])
		if err != nil {
			return err
		}
		uri, err := domain.SelectURI(*resolved)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), uri)
		return nil
	},
}

func resolveArg(ctx context.Context, cat *sqlite.Catalog, arg string) (*domain.ResolvedCollection, error) {
	if err := application.ValidateRequired("identifier", arg); err != nil {
		return nil, err
	}
	id, err := domain.Normalize(arg)
	if err != nil {
		return nil, err
	}
	if err := cat.WaitReady(ctx); err != nil {
		return nil, err
	}
	return commands.NewResolveCommand(cat, id, logger).Execute(ctx)
}

// collectionPath composes the full path, falling back to the bare name
func collectionPath(ctx context.Context, cat *sqlite.Catalog, c domain.ResolvedCollection) string {
	records, err := cat.CollectionsByLibrary(ctx, c.LibraryID(), true)
	if err != nil {
		return c.Record.Name
	}
	path, err := domain.NewPathComposer(records).Compose(c.Record)
	if err != nil {
		logger.Warn("path incomplete", "collection", c.CollectionID(), "err", err)
	}
	if path == "" {
		return c.Record.Name
	}
	return path
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(uriCmd)
}
