package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"colljump/internal/adapters/sqlite"
	"colljump/internal/config"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Write a demo catalog",
	Long: `Write a small catalog with a user library and a group library to the
--catalog path. Useful for trying the TUI without a Zotero installation.

Example:
  colljump-cli seed-demo --catalog /tmp/demo.sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if _, err := os.Stat(config.ExpandHome(catalogPath)); err == nil && !seedForce {
			return fmt.Errorf("%s already exists (use --force to add the demo collections to it)", catalogPath)
		}

		cat, err := sqlite.Open(catalogPath, sqlite.Options{Logger: logger})
		if err != nil {
			return err
		}
		defer cat.Close()

		libs, records := sqlite.DemoLibraries(), sqlite.DemoCollections()
		if err := cat.Seed(ctx, libs, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d libraries and %d collections to %s\n", len(libs), len(records), cat.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "seed an existing database")
}
