package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"colljump/internal/adapters/sqlite"
	"colljump/internal/config"
	"colljump/internal/logging"
)

var (
	catalogPath string
	prefsPath   string
	logLevel    string
	timeout     time.Duration

	logger  *log.Logger
	catalog *sqlite.Catalog
)

var rootCmd = &cobra.Command{
	Use:   "colljump-cli",
	Short: "Find and jump to Zotero collections",
	Long: `colljump-cli reads a Zotero catalog database and lets you list, resolve
and jump to collections from the command line.

Collections are addressed by numeric id or by their 8-character key.
Jumping hands a zotero://select link to the system URL opener.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		logger = logging.New(os.Stderr, logLevel)
		// A failed run skips the post-run hook
		return closeCatalog()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeCatalog()
	},
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	if cerr := closeCatalog(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", config.CatalogPath(), "path to the catalog database")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", config.PrefsPath(), "path to the preference file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the catalog")
}

// GetCatalog opens the catalog read-only on first use
func GetCatalog() (*sqlite.Catalog, error) {
	if catalog != nil {
		return catalog, nil
	}
	c, err := sqlite.Open(catalogPath, sqlite.Options{ReadOnly: true, Logger: logger})
	if err != nil {
		return nil, err
	}
	catalog = c
	return catalog, nil
}

func closeCatalog() error {
	if catalog == nil {
		return nil
	}
	err := catalog.Close()
	catalog = nil
	return err
}

// commandContext bounds a command by --timeout
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
