package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"colljump/internal/application"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// FlatIndexResult is the flat picker's data for one library
type FlatIndexResult struct {
	Library domain.Library
	Entries []domain.PathEntry
}

// BuildFlatIndexCommand lists every collection of the target library with
// its composed path, sorted by path
type BuildFlatIndexCommand struct {
	catalog ports.Catalog
	pane    ports.Pane
	logger  *log.Logger
}

// NewBuildFlatIndexCommand creates a new BuildFlatIndexCommand. pane may be
// nil, in which case the user library is indexed.
func NewBuildFlatIndexCommand(catalog ports.Catalog, pane ports.Pane, logger *log.Logger) *BuildFlatIndexCommand {
	return &BuildFlatIndexCommand{catalog: catalog, pane: pane, logger: logging.OrDiscard(logger)}
}

// Execute runs the build command
func (c *BuildFlatIndexCommand) Execute(ctx context.Context) (*FlatIndexResult, error) {
	lib, records, err := loadLibrary(ctx, c.catalog, c.pane, c.logger)
	if err != nil {
		return nil, err
	}

	entries, errs := domain.BuildFlatIndex(records)
	for _, e := range errs {
		c.logger.Warn("path truncated", "err", e)
	}
	c.logger.Debug("flat index built", "library", lib.ID, "collections", len(entries))

	return &FlatIndexResult{Library: lib, Entries: entries}, nil
}

// ParentIndexResult is the tree picker's data for one library
type ParentIndexResult struct {
	Library domain.Library
	Index   domain.ParentIndex
}

// BuildParentIndexCommand groups the target library's collections by parent
type BuildParentIndexCommand struct {
	catalog ports.Catalog
	pane    ports.Pane
	logger  *log.Logger
}

// NewBuildParentIndexCommand creates a new BuildParentIndexCommand
func NewBuildParentIndexCommand(catalog ports.Catalog, pane ports.Pane, logger *log.Logger) *BuildParentIndexCommand {
	return &BuildParentIndexCommand{catalog: catalog, pane: pane, logger: logging.OrDiscard(logger)}
}

// Execute runs the build command
func (c *BuildParentIndexCommand) Execute(ctx context.Context) (*ParentIndexResult, error) {
	lib, records, err := loadLibrary(ctx, c.catalog, c.pane, c.logger)
	if err != nil {
		return nil, err
	}

	idx := domain.BuildParentIndex(records)
	c.logger.Debug("parent index built", "library", lib.ID, "collections", idx.Len(), "roots", len(idx.Roots()))

	return &ParentIndexResult{Library: lib, Index: idx}, nil
}

// loadLibrary waits for the catalog, picks the target library and fetches
// its normalized records in one recursive query
func loadLibrary(ctx context.Context, catalog ports.Catalog, pane ports.Pane, logger *log.Logger) (domain.Library, []domain.CollectionRecord, error) {
	if err := guard(func() error { return catalog.WaitReady(ctx) }); err != nil {
		logger.Error("catalog not ready", "err", err)
		return domain.Library{}, nil, &application.QueryError{Op: "wait ready", Err: err}
	}

	lib, err := TargetLibrary(ctx, catalog, pane, logger)
	if err != nil {
		return domain.Library{}, nil, err
	}

	var records []domain.CollectionRecord
	err = guard(func() error {
		var err error
		records, err = catalog.CollectionsByLibrary(ctx, lib.ID, true)
		return err
	})
	if err != nil {
		logger.Error("collection query failed", "library", lib.ID, "err", err)
		return domain.Library{}, nil, &application.QueryError{
			Op:  fmt.Sprintf("list collections of library %d", lib.ID),
			Err: err,
		}
	}

	normalized, dangling := domain.NormalizeRecords(records)
	for _, id := range dangling {
		logger.Warn("dangling parent reference, treating as root", "collection", id)
	}
	return lib, normalized, nil
}

// TargetLibrary returns the library active in the pane when it resolves in
// the catalog, and the user library otherwise
func TargetLibrary(ctx context.Context, catalog ports.Catalog, pane ports.Pane, logger *log.Logger) (domain.Library, error) {
	logger = logging.OrDiscard(logger)

	if pane != nil {
		var (
			active int64
			ok     bool
		)
		if err := guard(func() error {
			active, ok = pane.ActiveLibraryID()
			return nil
		}); err != nil {
			logger.Warn("active library lookup failed", "err", err)
		} else if ok {
			lib, err := lookupLibrary(ctx, catalog, active)
			switch {
			case err != nil:
				logger.Warn("active library lookup failed", "library", active, "err", err)
			case lib == nil:
				logger.Warn("active library not in catalog", "library", active)
			default:
				return *lib, nil
			}
		}
	}

	var userID int64
	err := guard(func() error {
		var err error
		userID, err = catalog.UserLibraryID(ctx)
		return err
	})
	if err != nil {
		logger.Error("user library lookup failed", "err", err)
		return domain.Library{}, &application.QueryError{Op: "user library", Err: err}
	}
	lib, err := lookupLibrary(ctx, catalog, userID)
	if err != nil {
		logger.Error("user library lookup failed", "library", userID, "err", err)
		return domain.Library{}, &application.QueryError{Op: "user library", Err: err}
	}
	if lib == nil {
		return domain.Library{ID: userID, Type: domain.LibraryTypeUser}, nil
	}
	return *lib, nil
}

func lookupLibrary(ctx context.Context, catalog ports.Catalog, id int64) (lib *domain.Library, err error) {
	err = guard(func() error {
		lib, err = catalog.Library(ctx, id)
		return err
	})
	return lib, err
}
