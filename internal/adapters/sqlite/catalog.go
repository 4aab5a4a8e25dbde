package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"colljump/internal/config"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"

	_ "modernc.org/sqlite"
)

// userLibraryName is shown for the personal library, which has no name
// column in the catalog
const userLibraryName = "My Library"

// readyPoll is how often WaitReady re-checks the schema
const readyPoll = 100 * time.Millisecond

// ErrSchemaMissing is returned while the catalog tables do not exist yet
var ErrSchemaMissing = errors.New("catalog schema missing")

// Options configures Open
type Options struct {
	ReadOnly bool
	Logger   *log.Logger
}

// Catalog implements ports.Catalog over a Zotero-layout SQLite database
type Catalog struct {
	db     *sql.DB
	path   string
	logger *log.Logger

	mu        sync.Mutex
	parentCol string // detected parent column, "" when the schema has none
	detected  bool
}

// Ensure Catalog implements ports.Catalog
var _ ports.Catalog = (*Catalog)(nil)

// Open opens the catalog database at path
func Open(path string, opts Options) (*Catalog, error) {
	path = config.ExpandHome(path)

	if !opts.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, opts.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	return &Catalog{db: db, path: path, logger: logging.OrDiscard(opts.Logger)}, nil
}

func dsn(path string, readOnly bool) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	if readOnly {
		q.Add("mode", "ro")
	} else {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + q.Encode()
}

// Path returns the database file path
func (c *Catalog) Path() string {
	return c.path
}

// Close closes the database connection
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// WaitReady blocks until the collections and libraries tables exist
func (c *Catalog) WaitReady(ctx context.Context) error {
	for {
		err := c.checkSchema(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSchemaMissing) {
			return err
		}
		c.logger.Debug("catalog not ready, waiting", "path", c.path)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", err, ctx.Err())
		case <-time.After(readyPoll):
		}
	}
}

func (c *Catalog) checkSchema(ctx context.Context) error {
	var n int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('libraries', 'collections')
	`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n < 2 {
		return ErrSchemaMissing
	}
	_, err = c.parentColumn(ctx)
	return err
}

// parentColumn finds the column holding the parent collection id. Older
// catalogs name it parentID; current ones parentCollectionID.
func (c *Catalog) parentColumn(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detected {
		return c.parentCol, nil
	}

	rows, err := c.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('collections')`)
	if err != nil {
		return "", fmt.Errorf("failed to inspect collections: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", ErrSchemaMissing
	}

	switch {
	case cols["parentCollectionID"]:
		c.parentCol = "parentCollectionID"
	case cols["parentID"]:
		c.parentCol = "parentID"
	default:
		c.parentCol = ""
		c.logger.Warn("collections table has no parent column, every collection is a root")
	}
	c.detected = true
	return c.parentCol, nil
}

// UserLibraryID returns the id of the personal library
func (c *Catalog) UserLibraryID(ctx context.Context) (int64, error) {
	var id int64
	err := c.db.QueryRowContext(ctx, `
		SELECT libraryID FROM libraries WHERE type = 'user'
		ORDER BY libraryID LIMIT 1
	`).Scan(&id)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

const librarySelect = `
	SELECT l.libraryID, l.type, COALESCE(g.groupID, 0), COALESCE(g.name, '')
	FROM libraries l LEFT JOIN "groups" g ON g.libraryID = l.libraryID
`

// Library retrieves a library by id
func (c *Catalog) Library(ctx context.Context, libraryID int64) (*domain.Library, error) {
	rows, err := c.db.QueryContext(ctx, librarySelect+` WHERE l.libraryID = ?`, libraryID)
	if err != nil {
		return nil, err
	}
	libs, err := scanLibraries(rows)
	if err != nil || len(libs) == 0 {
		return nil, err
	}
	return &libs[0], nil
}

// Libraries lists every library, the user library first
func (c *Catalog) Libraries(ctx context.Context) ([]domain.Library, error) {
	rows, err := c.db.QueryContext(ctx, librarySelect+` ORDER BY l.type = 'group', l.libraryID`)
	if err != nil {
		return nil, err
	}
	return scanLibraries(rows)
}

func scanLibraries(rows *sql.Rows) ([]domain.Library, error) {
	defer rows.Close()

	var libs []domain.Library
	for rows.Next() {
		var (
			lib     domain.Library
			libType string
		)
		if err := rows.Scan(&lib.ID, &libType, &lib.GroupID, &lib.Name); err != nil {
			return nil, err
		}
		lib.Type = domain.ParseLibraryType(libType)
		if lib.IsUser() {
			lib.Name = userLibraryName
		}
		libs = append(libs, lib)
	}
	return libs, rows.Err()
}

// collectionSelect builds the projection for the detected schema variant
func collectionSelect(parentCol string) string {
	if parentCol == "" {
		return `
			SELECT c.collectionID, c.key, c.collectionName, '', 0, c.libraryID
			FROM collections c
		`
	}
	return fmt.Sprintf(`
		SELECT c.collectionID, c.key, c.collectionName,
		       COALESCE(p.key, ''), COALESCE(c.%[1]s, 0), c.libraryID
		FROM collections c LEFT JOIN collections p ON p.collectionID = c.%[1]s
	`, parentCol)
}

// CollectionsByLibrary lists the collections of a library. Without recursive
// only root collections are returned.
func (c *Catalog) CollectionsByLibrary(ctx context.Context, libraryID int64, recursive bool) ([]domain.CollectionRecord, error) {
	parentCol, err := c.parentColumn(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(collectionSelect(parentCol))
	b.WriteString(` WHERE c.libraryID = ?`)
	if !recursive && parentCol != "" {
		fmt.Fprintf(&b, ` AND c.%s IS NULL`, parentCol)
	}
	b.WriteString(` ORDER BY c.collectionID`)

	rows, err := c.db.QueryContext(ctx, b.String(), libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CollectionRecord
	for rows.Next() {
		rec, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CollectionByID retrieves a collection by numeric id
func (c *Catalog) CollectionByID(ctx context.Context, id int64) (*domain.CollectionRecord, error) {
	parentCol, err := c.parentColumn(ctx)
	if err != nil {
		return nil, err
	}

	row := c.db.QueryRowContext(ctx, collectionSelect(parentCol)+` WHERE c.collectionID = ?`, id)
	rec, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CollectionIDByKey queries the store for the collection carrying key
func (c *Catalog) CollectionIDByKey(ctx context.Context, key string) (int64, bool, error) {
	var id int64
	err := c.db.QueryRowContext(ctx, `SELECT collectionID FROM collections WHERE key = ? LIMIT 1`, key).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// CollectionIDByLibraryKey queries the store for the collection carrying key
// in libraryID
func (c *Catalog) CollectionIDByLibraryKey(ctx context.Context, libraryID int64, key string) (int64, bool, error) {
	var id int64
	err := c.db.QueryRowContext(ctx,
		`SELECT collectionID FROM collections WHERE libraryID = ? AND key = ?`, libraryID, key).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(s scanner) (domain.CollectionRecord, error) {
	var rec domain.CollectionRecord
	err := s.Scan(&rec.ID, &rec.Key, &rec.Name, &rec.ParentKey, &rec.ParentID, &rec.LibraryID)
	return rec, err
}
