package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"colljump/internal/adapters/launcher"
	"colljump/internal/adapters/prefs"
	"colljump/internal/domain"
)

var prefsEditor bool

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read and change preferences",
	Long: `Read and change the preferences stored under extensions.colljump in the
--prefs file. A running TUI picks up every change.

Examples:
  colljump-cli prefs get
  colljump-cli prefs set panelHeight 600
  colljump-cli prefs edit`,
}

var prefsGetCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Print preferences",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := prefs.Open(prefsPath, logger)
		if err != nil {
			return err
		}
		p := store.Load()
		values := map[string]string{
			domain.PrefKey(domain.PrefEnableTreePane): strconv.FormatBool(p.EnableTreePane),
			domain.PrefKey(domain.PrefPanelHeight):    strconv.Itoa(p.PanelHeight),
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			name := args[0]
			if v, ok := values[name]; ok {
				fmt.Fprintln(out, v)
				return nil
			}
			if v, ok := values[domain.PrefKey(name)]; ok {
				fmt.Fprintln(out, v)
				return nil
			}
			return fmt.Errorf("unknown preference: %s", name)
		}
		for _, name := range []string{domain.PrefEnableTreePane, domain.PrefPanelHeight} {
			fmt.Fprintf(out, "%s = %s\n", domain.PrefKey(name), values[domain.PrefKey(name)])
		}
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Change a preference",
	Long: `Change a preference. Names may be given in full or relative to
extensions.colljump. Panel heights are clamped to the allowed range.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := prefs.Open(prefsPath, logger)
		if err != nil {
			return err
		}
		if err := store.Set(args[0], args[1]); err != nil {
			return err
		}
		p := store.Load()
		fmt.Fprintf(cmd.OutOrStdout(), "Saved (enableTreePane=%t, panelHeight=%d)\n", p.EnableTreePane, p.PanelHeight)
		return nil
	},
}

var prefsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit preferences in a form or in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := prefs.Open(prefsPath, logger)
		if err != nil {
			return err
		}

		if prefsEditor {
			if err := launcher.NewEditor().Open(store.Path()); err != nil {
				return err
			}
			return store.Reload()
		}

		current := store.Load()
		treePane := current.EnableTreePane
		height := strconv.Itoa(current.PanelHeight)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Show the tree panel?").
					Affirmative("Yes").
					Negative("No").
					Value(&treePane),
				huh.NewInput().
					Title("Panel height (pixels)").
					Description(fmt.Sprintf("Between %d and %d", domain.MinPanelHeight, domain.MaxPanelHeight)).
					Value(&height).
					Validate(validateHeight),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		if err := store.SetEnableTreePane(treePane); err != nil {
			return err
		}
		px, _ := strconv.Atoi(height)
		stored, err := store.SetPanelHeight(px)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved (enableTreePane=%t, panelHeight=%d)\n", treePane, stored)
		return nil
	},
}

func validateHeight(s string) error {
	px, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("enter a whole number of pixels")
	}
	if px < domain.MinPanelHeight || px > domain.MaxPanelHeight {
		return fmt.Errorf("must be between %d and %d", domain.MinPanelHeight, domain.MaxPanelHeight)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsEditCmd)
	prefsEditCmd.Flags().BoolVarP(&prefsEditor, "editor", "e", false, "open the preference file in $EDITOR")
}
