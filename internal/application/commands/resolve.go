package commands

import (
	"context"

	"github.com/charmbracelet/log"

	"colljump/internal/application"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// ResolveCommand locates the collection an identifier refers to
type ResolveCommand struct {
	catalog    ports.Catalog
	logger     *log.Logger
	Identifier domain.Identifier
}

// NewResolveCommand creates a new ResolveCommand
func NewResolveCommand(catalog ports.Catalog, id domain.Identifier, logger *log.Logger) *ResolveCommand {
	return &ResolveCommand{catalog: catalog, logger: logging.OrDiscard(logger), Identifier: id}
}

// Validate checks the identifier is usable
func (c *ResolveCommand) Validate() error {
	if !c.Identifier.IsValid() {
		return &application.ValidationError{
			Field:   "identifier",
			Message: "identifier is required",
		}
	}
	return nil
}

// Execute resolves by numeric id first and falls back to a key lookup in the
// store. Host errors are traced and reported as ErrNotFound.
func (c *ResolveCommand) Execute(ctx context.Context) (*domain.ResolvedCollection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rec := c.lookup(ctx, c.Identifier)
	if rec == nil {
		c.logger.Info("collection not found", "kind", c.Identifier.Kind(), "identifier", c.Identifier)
		return nil, &application.NotFoundError{Identifier: c.Identifier}
	}

	lib, err := c.catalog.Library(ctx, rec.LibraryID)
	if err != nil || lib == nil {
		c.logger.Warn("library lookup failed", "library", rec.LibraryID, "err", err)
		return nil, &application.NotFoundError{Identifier: c.Identifier}
	}

	return &domain.ResolvedCollection{Record: *rec, Library: *lib}, nil
}

func (c *ResolveCommand) lookup(ctx context.Context, id domain.Identifier) *domain.CollectionRecord {
	switch id.Kind() {
	case domain.IdentifierNumeric:
		n, _ := id.ID()
		if rec := c.byID(ctx, n); rec != nil {
			return rec
		}
		// Keys may be all digits; retry the id's decimal spelling as a key
		return c.byKey(ctx, id.AsKey())
	case domain.IdentifierKey:
		return c.byKey(ctx, id)
	default:
		return nil
	}
}

func (c *ResolveCommand) byID(ctx context.Context, id int64) *domain.CollectionRecord {
	var rec *domain.CollectionRecord
	err := guard(func() error {
		var err error
		rec, err = c.catalog.CollectionByID(ctx, id)
		return err
	})
	if err != nil {
		c.logger.Warn("lookup by id failed", "id", id, "err", err)
		return nil
	}
	return rec
}

func (c *ResolveCommand) byKey(ctx context.Context, id domain.Identifier) *domain.CollectionRecord {
	key, ok := id.KeyValue()
	if !ok {
		return nil
	}

	var (
		found int64
		hit   bool
	)
	err := guard(func() error {
		var err error
		found, hit, err = c.catalog.CollectionIDByKey(ctx, key)
		return err
	})
	if err != nil {
		c.logger.Warn("lookup by key failed", "key", key, "err", err)
		return nil
	}
	if !hit {
		return nil
	}
	return c.byID(ctx, found)
}
