package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"colljump/internal/adapters/prefs"
	"colljump/internal/adapters/sqlite"
	"colljump/internal/adapters/tui"
	"colljump/internal/adapters/tui/views"
	"colljump/internal/config"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/session"
)

var (
	catalogPath string
	prefsPath   string
	logPath     string
	logLevel    string
	noURIRouter bool
)

var rootCmd = &cobra.Command{
	Use:   "colljump",
	Short: "Browse a Zotero catalog and jump to any collection",
	Long: `colljump shows the collections of a Zotero catalog in a sidebar and lets
you jump to any of them from a filterable list (g) or a tree (t).

The catalog is opened read-only and watched for changes.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&catalogPath, "catalog", "c", config.CatalogPath(), "path to the catalog database")
	rootCmd.Flags().StringVar(&prefsPath, "prefs", config.PrefsPath(), "path to the preference file")
	rootCmd.Flags().StringVar(&logPath, "log-file", config.LogPath(), "path to the log file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&noURIRouter, "no-uri-router", false, "select through the pane and tree view only")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, logFile, err := logging.OpenFile(config.ExpandHome(logPath), logLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	catalog, err := sqlite.Open(catalogPath, sqlite.Options{ReadOnly: true, Logger: logger})
	if err != nil {
		return err
	}
	defer catalog.Close()

	store, err := prefs.Open(prefsPath, logger)
	if err != nil {
		return err
	}

	registry := session.NewRegistry(logger)
	defer func() {
		if err := registry.UnmountAll(); err != nil {
			logger.Warn("shutdown cleanup failed", "err", err)
		}
	}()
	sess := registry.Mount("main")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.NewApp(tui.Options{
		Catalog:          catalog,
		Prefs:            store,
		Session:          sess,
		Logger:           logger,
		DisableURIRouter: noURIRouter,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	app.Attach(p.Send)

	notifier := sqlite.NewNotifier(catalog, logger)
	sess.OnClose(notifier.Subscribe(func(ev domain.CollectionEvent) {
		p.Send(views.CatalogChangedMsg{Event: ev})
	}))
	sess.OnClose(store.Observe(domain.PrefPrefix, func(name string) {
		p.Send(views.PrefsChangedMsg{Name: name, Prefs: store.Load()})
	}))

	logger.Info("starting", "catalog", catalog.Path(), "prefs", store.Path(), "session", sess.ID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := notifier.Run(gctx); err != nil {
			logger.Warn("catalog watcher stopped", "err", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := store.Watch(gctx); err != nil {
			logger.Warn("preference watcher stopped", "err", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
