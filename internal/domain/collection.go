package domain

// LibraryType distinguishes the personal library from shared group libraries
type LibraryType int

const (
	LibraryTypeUser LibraryType = iota
	LibraryTypeGroup
)

// String returns the catalog spelling of the library type
func (t LibraryType) String() string {
	switch t {
	case LibraryTypeUser:
		return "user"
	case LibraryTypeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseLibraryType maps the catalog's type column onto LibraryType.
// Anything that is not "group" is treated as the user library.
func ParseLibraryType(s string) LibraryType {
	if s == "group" {
		return LibraryTypeGroup
	}
	return LibraryTypeUser
}

// Library is a top-level, isolated namespace of collections
type Library struct {
	ID      int64
	Type    LibraryType
	GroupID int64 // zero for the user library
	Name    string
}

// IsUser reports whether this is the personal library
func (l Library) IsUser() bool {
	return l.Type == LibraryTypeUser
}

// CollectionRecord is a read-only snapshot of one node in the host catalog
type CollectionRecord struct {
	ID        int64  // library-scoped numeric id
	Key       string // library-scoped opaque key, e.g. "ABCD1234"
	Name      string
	ParentKey string // empty for root collections
	ParentID  int64  // zero for root collections
	LibraryID int64
}

// IsRoot reports whether the record carries no parent reference at all
func (r CollectionRecord) IsRoot() bool {
	return r.ParentKey == "" && r.ParentID == 0
}

// RawID lets a record be passed straight to Normalize
func (r CollectionRecord) RawID() any {
	return r.ID
}

// ResolvedCollection is a collection located by the resolver together with
// the library it lives in
type ResolvedCollection struct {
	Record  CollectionRecord
	Library Library
}

// CollectionID returns the effective numeric id
func (c ResolvedCollection) CollectionID() int64 { return c.Record.ID }

// LibraryID returns the effective library id
func (c ResolvedCollection) LibraryID() int64 { return c.Library.ID }

// Key returns the effective collection key
func (c ResolvedCollection) Key() string { return c.Record.Key }

// ChangeKind is the kind of catalog change notification
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeModify
	ChangeDelete
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeModify:
		return "modify"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// CollectionEvent reports that one collection was added, modified or deleted
type CollectionEvent struct {
	Kind         ChangeKind
	CollectionID int64
	LibraryID    int64
}
