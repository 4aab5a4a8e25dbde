package ports

import (
	"context"

	"colljump/internal/domain"
)

// Catalog is the host's live store of libraries and collections.
// Lookups that find nothing return (nil, nil) rather than an error.
type Catalog interface {
	// WaitReady blocks until the catalog is initialized and its schema is
	// usable for queries
	WaitReady(ctx context.Context) error

	// Library queries
	UserLibraryID(ctx context.Context) (int64, error)
	Library(ctx context.Context, libraryID int64) (*domain.Library, error)
	Libraries(ctx context.Context) ([]domain.Library, error)

	// Collection queries
	CollectionsByLibrary(ctx context.Context, libraryID int64, recursive bool) ([]domain.CollectionRecord, error)
	CollectionByID(ctx context.Context, id int64) (*domain.CollectionRecord, error)

	// CollectionIDByKey queries the persistent store directly for the id
	// carrying key. ok is false when no collection has that key.
	CollectionIDByKey(ctx context.Context, key string) (id int64, ok bool, err error)

	// CollectionIDByLibraryKey is CollectionIDByKey within one library.
	// Keys are unique per library only.
	CollectionIDByLibraryKey(ctx context.Context, libraryID int64, key string) (id int64, ok bool, err error)
}

// ChangeNotifier delivers collection add/modify/delete notifications
type ChangeNotifier interface {
	// Subscribe registers fn and returns the function that removes it
	Subscribe(fn func(domain.CollectionEvent)) (unsubscribe func())
}
