package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"colljump/internal/adapters/launcher"
	"colljump/internal/application"
	"colljump/internal/application/commands"
	"colljump/internal/ports"
)

var jumpVerbose bool

var jumpCmd = &cobra.Command{
	Use:   "jump <id-or-key-or-link>",
	Short: "Select a collection in Zotero",
	Long: `Resolve a collection and hand its zotero://select link to the system URL
opener, which brings Zotero to the front with the collection selected.

A zotero://select link is launched as given.

Examples:
  colljump-cli jump 42
  colljump-cli jump ABCD1234
  colljump-cli jump zotero://select/groups/2/collections/WXYZ9876`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := application.ValidateRequired("identifier", args[0]); err != nil {
			return err
		}

		opener := launcher.New(logger)
		if launcher.IsSelectURI(args[0]) {
			if err := opener.LaunchURL(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", args[0])
			return nil
		}

		cat, err := GetCatalog()
		if err != nil {
			return err
		}

		// The OS opener is the only capability outside a host window
		driver := commands.NewSelectionDriver(ports.Host{URLLauncher: opener}, logger, commands.WithSettleDelay(0))
		result, err := commands.NewJumpCommand(cat, driver, args[0], logger).Execute(ctx)
		if result != nil && result.Report != nil && (jumpVerbose || err != nil) {
			for _, a := range result.Report.Attempts {
				if a.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %-5s %s: %v\n", a.Strategy, a.Outcome, a.Err)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %-5s %s\n", a.Strategy, a.Outcome)
				}
			}
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jumpCmd)
	jumpCmd.Flags().BoolVarP(&jumpVerbose, "verbose", "V", false, "show every selection attempt")
}
