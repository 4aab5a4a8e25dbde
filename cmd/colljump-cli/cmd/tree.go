package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"colljump/internal/application/commands"
	"colljump/internal/domain"
)

var (
	treeLibrary int64
	treeKeys    bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the collection tree of a library",
	Long: `Display the collection tree of a library, children sorted by name.

Example:
  colljump-cli tree --keys`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cat, err := GetCatalog()
		if err != nil {
			return err
		}
		pane := commands.StaticPane{LibraryID: treeLibrary}
		res, err := commands.NewBuildParentIndexCommand(cat, pane, logger).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Library.Name)
		res.Index.Walk(func(r domain.CollectionRecord, depth int) bool {
			printNode(out, r, depth+1)
			return true
		})
		return nil
	},
}

func printNode(w io.Writer, r domain.CollectionRecord, depth int) {
	indent := strings.Repeat("  ", depth)
	if treeKeys {
		fmt.Fprintf(w, "%s%s %s\n", indent, r.Key, r.Name)
		return
	}
	fmt.Fprintf(w, "%s%s\n", indent, r.Name)
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Int64VarP(&treeLibrary, "library", "l", 0, "library id (default: the user library)")
	treeCmd.Flags().BoolVarP(&treeKeys, "keys", "k", false, "show collection keys")
}
