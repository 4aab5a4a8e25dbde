package sqlite

import "colljump/internal/domain"

// DemoLibraries is a small personal library plus one group library
func DemoLibraries() []domain.Library {
	return []domain.Library{
		{ID: 1, Type: domain.LibraryTypeUser},
		{ID: 2, Type: domain.LibraryTypeGroup, GroupID: 4711, Name: "Reading Group"},
	}
}

// DemoCollections is a nested collection forest across the demo libraries,
// ordered parents first
func DemoCollections() []domain.CollectionRecord {
	return []domain.CollectionRecord{
		{ID: 1, Key: "ABCD1234", Name: "Research", LibraryID: 1},
		{ID: 2, Key: "B7KQ2M9P", Name: "Papers", ParentKey: "ABCD1234", LibraryID: 1},
		{ID: 3, Key: "C3XR8N2F", Name: "2024", ParentKey: "B7KQ2M9P", LibraryID: 1},
		{ID: 4, Key: "D9VW4T6H", Name: "Drafts", ParentKey: "ABCD1234", LibraryID: 1},
		{ID: 5, Key: "E2LM7Q3J", Name: "teaching", LibraryID: 1},
		{ID: 6, Key: "F8NP5R1K", Name: "Chapter 10", ParentKey: "E2LM7Q3J", LibraryID: 1},
		{ID: 7, Key: "G4TS9W2L", Name: "Chapter 2", ParentKey: "E2LM7Q3J", LibraryID: 1},
		{ID: 8, Key: "H6QZ3X8M", Name: "Émigré studies", LibraryID: 1},
		{ID: 20, Key: "WXYZ9876", Name: "Shared", LibraryID: 2},
		{ID: 21, Key: "J5RB2C7N", Name: "Week 1", ParentKey: "WXYZ9876", LibraryID: 2},
		{ID: 22, Key: "23456789", Name: "Digits only", LibraryID: 2},
	}
}
