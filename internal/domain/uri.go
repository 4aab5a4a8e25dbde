package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectURIPrefix is the host's deep-link scheme for selecting objects
const SelectURIPrefix = "zotero://select"

// SelectURI builds the deep link that selects a collection.
//
//	user library:  zotero://select/library/collections/<key>
//	group library: zotero://select/groups/<libraryID>/collections/<key>
func SelectURI(c ResolvedCollection) (string, error) {
	key := c.Key()
	if key == "" {
		return "", fmt.Errorf("collection %d has no key", c.CollectionID())
	}
	if c.Library.IsUser() {
		return fmt.Sprintf("%s/library/collections/%s", SelectURIPrefix, key), nil
	}
	return fmt.Sprintf("%s/groups/%d/collections/%s", SelectURIPrefix, c.LibraryID(), key), nil
}

// SelectTarget is a parsed collection deep link
type SelectTarget struct {
	UserLibrary bool
	LibraryID   int64 // set for group links only
	Key         string
}

// ParseSelectURI parses a collection deep link produced by SelectURI
func ParseSelectURI(uri string) (SelectTarget, error) {
	rest, ok := strings.CutPrefix(uri, SelectURIPrefix+"/")
	if !ok {
		return SelectTarget{}, fmt.Errorf("not a select URI: %s", uri)
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 3 && parts[0] == "library" && parts[1] == "collections" && parts[2] != "":
		return SelectTarget{UserLibrary: true, Key: parts[2]}, nil
	case len(parts) == 4 && parts[0] == "groups" && parts[2] == "collections" && parts[3] != "":
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return SelectTarget{}, fmt.Errorf("invalid library id in %s: %w", uri, err)
		}
		return SelectTarget{LibraryID: id, Key: parts[3]}, nil
	default:
		return SelectTarget{}, fmt.Errorf("unsupported select URI: %s", uri)
	}
}
