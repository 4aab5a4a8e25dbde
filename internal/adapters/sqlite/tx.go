package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"colljump/internal/domain"
)

// schema is the subset of the Zotero catalog layout this package reads
const schema = `
	CREATE TABLE IF NOT EXISTS libraries (
		libraryID INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		editable INT NOT NULL DEFAULT 1,
		filesEditable INT NOT NULL DEFAULT 1,
		version INT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS "groups" (
		groupID INTEGER PRIMARY KEY,
		libraryID INT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		version INT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS collections (
		collectionID INTEGER PRIMARY KEY,
		collectionName TEXT NOT NULL,
		clientDateModified TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		parentCollectionID INT DEFAULT NULL,
		libraryID INT NOT NULL,
		key TEXT NOT NULL,
		version INT NOT NULL DEFAULT 0,
		synced INT NOT NULL DEFAULT 0,
		UNIQUE (libraryID, key)
	);
	CREATE INDEX IF NOT EXISTS collections_parentCollectionID ON collections(parentCollectionID);
`

// CreateSchema creates the catalog tables when they are missing
func (c *Catalog) CreateSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Tx writes catalog rows in one transaction. It backs fixtures and the demo
// seeder; the host application owns real catalogs.
type Tx struct {
	tx        *sql.Tx
	parentCol string
}

// BeginTx starts a new write transaction
func (c *Catalog) BeginTx(ctx context.Context) (*Tx, error) {
	parentCol, err := c.parentColumn(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, parentCol: parentCol}, nil
}

// UpsertLibrary inserts or updates a library and, for groups, its group row
func (t *Tx) UpsertLibrary(ctx context.Context, lib domain.Library) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO libraries (libraryID, type) VALUES (?, ?)
		ON CONFLICT(libraryID) DO UPDATE SET type = excluded.type
	`, lib.ID, lib.Type.String())
	if err != nil {
		return fmt.Errorf("upsert library %d: %w", lib.ID, err)
	}
	if lib.IsUser() {
		return nil
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO "groups" (groupID, libraryID, name) VALUES (?, ?, ?)
		ON CONFLICT(groupID) DO UPDATE SET libraryID = excluded.libraryID, name = excluded.name
	`, lib.GroupID, lib.ID, lib.Name)
	if err != nil {
		return fmt.Errorf("upsert group %d: %w", lib.GroupID, err)
	}
	return nil
}

// UpsertCollection inserts or updates a collection. A record that names its
// parent only by key has the key resolved within its library.
func (t *Tx) UpsertCollection(ctx context.Context, rec domain.CollectionRecord) error {
	parentID := sql.NullInt64{Int64: rec.ParentID, Valid: rec.ParentID != 0}
	if !parentID.Valid && rec.ParentKey != "" {
		err := t.tx.QueryRowContext(ctx,
			`SELECT collectionID FROM collections WHERE libraryID = ? AND key = ?`,
			rec.LibraryID, rec.ParentKey,
		).Scan(&parentID.Int64)
		if err != nil {
			return fmt.Errorf("parent %q of %q: %w", rec.ParentKey, rec.Key, err)
		}
		parentID.Valid = true
	}

	if t.parentCol == "" {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO collections (collectionID, collectionName, libraryID, key) VALUES (?, ?, ?, ?)
			ON CONFLICT(collectionID) DO UPDATE SET
				collectionName = excluded.collectionName, key = excluded.key
		`, rec.ID, rec.Name, rec.LibraryID, rec.Key)
		return err
	}

	_, err := t.tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO collections (collectionID, collectionName, %[1]s, libraryID, key) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collectionID) DO UPDATE SET
			collectionName = excluded.collectionName,
			%[1]s = excluded.%[1]s,
			libraryID = excluded.libraryID,
			key = excluded.key
	`, t.parentCol), rec.ID, rec.Name, parentID, rec.LibraryID, rec.Key)
	if err != nil {
		return fmt.Errorf("upsert collection %d: %w", rec.ID, err)
	}
	return nil
}

// RenameCollection changes a collection's name
func (t *Tx) RenameCollection(ctx context.Context, id int64, name string) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE collections SET collectionName = ? WHERE collectionID = ?`, name, id)
	return err
}

// DeleteCollection removes a collection. Children are left pointing at the
// removed id, as a partially synced catalog would.
func (t *Tx) DeleteCollection(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM collections WHERE collectionID = ?`, id)
	return err
}

// Commit commits the transaction
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Seed writes libraries and collections in one transaction. Collections must
// be ordered parents first when they reference parents by key only.
func (c *Catalog) Seed(ctx context.Context, libs []domain.Library, records []domain.CollectionRecord) error {
	if err := c.CreateSchema(ctx); err != nil {
		return err
	}

	tx, err := c.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, lib := range libs {
		if err := tx.UpsertLibrary(ctx, lib); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := tx.UpsertCollection(ctx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}
