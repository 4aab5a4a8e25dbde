package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RootKey groups root-level collections in a ParentIndex
const RootKey = ""

// PathEntry is one row of the flat picker
type PathEntry struct {
	ID   Identifier
	Key  string
	Path string
}

// newCollator returns a case- and accent-insensitive collator that orders
// digit runs numerically ("Chapter 2" < "Chapter 10"). Collators are not safe
// for concurrent use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics, collate.Numeric)
}

// ComparePaths orders two display strings the way every picker sorts them
func ComparePaths(a, b string) int {
	return newCollator().CompareString(a, b)
}

// SortPathEntries sorts entries in place by path
func SortPathEntries(entries []PathEntry) {
	c := newCollator()
	slices.SortStableFunc(entries, func(a, b PathEntry) int {
		return c.CompareString(a.Path, b.Path)
	})
}

// SortByName sorts records in place by name
func SortByName(records []CollectionRecord) {
	c := newCollator()
	slices.SortStableFunc(records, func(a, b CollectionRecord) int {
		return c.CompareString(a.Name, b.Name)
	})
}

// NormalizeRecords reconciles parent references across schema variants.
// Records that carry only a parent id get the parent's key and vice versa.
// Parents that do not resolve inside the set are dropped so the record is
// treated as a root; their ids are returned for tracing.
func NormalizeRecords(records []CollectionRecord) ([]CollectionRecord, []int64) {
	byID := make(map[int64]CollectionRecord, len(records))
	byKey := make(map[string]CollectionRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
		if r.Key != "" {
			byKey[r.Key] = r
		}
	}

	out := make([]CollectionRecord, 0, len(records))
	var dangling []int64
	for _, r := range records {
		r.Key = strings.TrimSpace(r.Key)
		r.ParentKey = strings.TrimSpace(r.ParentKey)

		switch {
		case r.ParentKey != "":
			if p, ok := byKey[r.ParentKey]; ok {
				r.ParentID = p.ID
			} else if p, ok := byID[r.ParentID]; ok && r.ParentID != 0 {
				r.ParentKey = p.Key
			} else {
				dangling = append(dangling, r.ID)
				r.ParentKey, r.ParentID = "", 0
			}
		case r.ParentID != 0:
			if p, ok := byID[r.ParentID]; ok {
				r.ParentKey = p.Key
			} else {
				dangling = append(dangling, r.ID)
				r.ParentID = 0
			}
		}
		out = append(out, r)
	}
	return out, dangling
}

// BuildFlatIndex composes a path for every record and returns the entries
// sorted by path. Structural errors do not abort the build: the affected
// record keeps its truncated path and the error is reported alongside.
func BuildFlatIndex(records []CollectionRecord) ([]PathEntry, []error) {
	pc := NewPathComposer(records)
	entries := make([]PathEntry, 0, len(records))
	var errs []error
	for _, r := range records {
		path, err := pc.Compose(r)
		if err != nil {
			errs = append(errs, err)
		}
		entries = append(entries, PathEntry{ID: NumericID(r.ID), Key: r.Key, Path: path})
	}
	SortPathEntries(entries)
	return entries, errs
}

// ParentIndex maps a parent key (RootKey for roots) to its children sorted by
// name. It is built once and never mutated.
type ParentIndex struct {
	groups map[string][]CollectionRecord
	size   int
}

// BuildParentIndex groups records by parent key. Records should already be
// normalized so that every ParentKey resolves.
func BuildParentIndex(records []CollectionRecord) ParentIndex {
	groups := make(map[string][]CollectionRecord)
	for _, r := range records {
		groups[r.ParentKey] = append(groups[r.ParentKey], r)
	}
	for _, g := range groups {
		SortByName(g)
	}
	return ParentIndex{groups: groups, size: len(records)}
}

// Roots returns the root-level collections
func (p ParentIndex) Roots() []CollectionRecord {
	return p.groups[RootKey]
}

// Children returns the direct children of the collection with the given key
func (p ParentIndex) Children(key string) []CollectionRecord {
	if key == RootKey {
		return nil
	}
	return p.groups[key]
}

// HasChildren reports whether the collection has sub-collections
func (p ParentIndex) HasChildren(key string) bool {
	return len(p.Children(key)) > 0
}

// Len returns the number of indexed records
func (p ParentIndex) Len() int { return p.size }

// Walk visits records depth-first from the roots, children in sorted order.
// Each record is visited at most once even if parent links form a cycle.
// Returning false from fn skips the record's subtree.
func (p ParentIndex) Walk(fn func(r CollectionRecord, depth int) bool) {
	seen := make(map[int64]bool, p.size)
	var visit func(rs []CollectionRecord, depth int)
	visit = func(rs []CollectionRecord, depth int) {
		for _, r := range rs {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			if !fn(r, depth) || depth+1 >= MaxPathDepth {
				continue
			}
			visit(p.Children(r.Key), depth+1)
		}
	}
	visit(p.Roots(), 0)
}
