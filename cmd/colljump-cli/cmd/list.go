package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"colljump/internal/application/commands"
)

var (
	listLibrary int64
	listQuery   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections by full path",
	Long: `List the collections of a library by full path, in the order the jump
panel shows them.

Examples:
  colljump-cli list
  colljump-cli list --query chapter
  colljump-cli list --library 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cat, err := GetCatalog()
		if err != nil {
			return err
		}
		pane := commands.StaticPane{LibraryID: listLibrary}
		res, err := commands.NewBuildFlatIndexCommand(cat, pane, logger).Execute(ctx)
		if err != nil {
			return err
		}

		entries := commands.FilterEntries(res.Entries, listQuery)
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.ID.String(), e.Key, e.Path})
		}
		writeTable(cmd.OutOrStdout(), []string{"ID", "Key", "Path"}, rows, []columnAlignment{alignRight})
		if isTerminal(cmd.OutOrStdout()) {
			cmd.Printf("%d collections in %s\n", len(entries), res.Library.Name)
		}
		return nil
	},
}

var librariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "List the user and group libraries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cat, err := GetCatalog()
		if err != nil {
			return err
		}
		if err := cat.WaitReady(ctx); err != nil {
			return err
		}
		libs, err := cat.Libraries(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(libs))
		for _, l := range libs {
			group := ""
			if !l.IsUser() {
				group = strconv.FormatInt(l.GroupID, 10)
			}
			rows = append(rows, []string{strconv.FormatInt(l.ID, 10), l.Type.String(), group, l.Name})
		}
		writeTable(cmd.OutOrStdout(), []string{"ID", "Type", "Group", "Name"}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(librariesCmd)
	listCmd.Flags().Int64VarP(&listLibrary, "library", "l", 0, "library id (default: the user library)")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "case-insensitive path filter")
}
