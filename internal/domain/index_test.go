package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(entries []PathEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestSortPathEntries_NumericAndCaseInsensitive(t *testing.T) {
	entries := []PathEntry{
		{Path: "B"}, {Path: "A"}, {Path: "Chapter 10"}, {Path: "Chapter 2"},
	}
	SortPathEntries(entries)
	assert.Equal(t, []string{"A", "B", "Chapter 2", "Chapter 10"}, paths(entries))
}

func TestSortPathEntries_IgnoresCase(t *testing.T) {
	entries := []PathEntry{{Path: "beta"}, {Path: "Alpha"}, {Path: "alpha / x"}, {Path: "Gamma"}}
	SortPathEntries(entries)
	assert.Equal(t, []string{"Alpha", "alpha / x", "beta", "Gamma"}, paths(entries))
}

func TestBuildFlatIndex(t *testing.T) {
	entries, errs := BuildFlatIndex(sampleForest())
	assert.Empty(t, errs)
	assert.Equal(t, []string{
		"Research",
		"Research / Papers",
		"Research / Papers / 2024",
		"teaching",
		"teaching / Chapter 2",
		"teaching / Chapter 10",
	}, paths(entries))

	id, ok := entries[2].ID.ID()
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, "LEAFA", entries[2].Key)
}

func TestBuildParentIndex_WalkVisitsEachOnce(t *testing.T) {
	records := sampleForest()
	idx := BuildParentIndex(records)

	visits := map[int64]int{}
	idx.Walk(func(r CollectionRecord, _ int) bool {
		visits[r.ID]++
		return true
	})

	require.Len(t, visits, len(records))
	for id, n := range visits {
		assert.Equal(t, 1, n, "record %d", id)
	}
	assert.Equal(t, len(records), idx.Len())
}

func TestBuildParentIndex_GroupsSorted(t *testing.T) {
	idx := BuildParentIndex(sampleForest())

	roots := idx.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "Research", roots[0].Name)
	assert.Equal(t, "teaching", roots[1].Name)

	kids := idx.Children("ROOTB")
	require.Len(t, kids, 2)
	assert.Equal(t, "Chapter 2", kids[0].Name)
	assert.Equal(t, "Chapter 10", kids[1].Name)

	assert.True(t, idx.HasChildren("ROOTA"))
	assert.False(t, idx.HasChildren("LEAFA"))
	assert.Nil(t, idx.Children(RootKey))
}

func TestBuildParentIndex_StableForEqualNames(t *testing.T) {
	idx := BuildParentIndex([]CollectionRecord{
		{ID: 1, Key: "A", Name: "notes"},
		{ID: 2, Key: "B", Name: "Notes"},
		{ID: 3, Key: "C", Name: "NOTES"},
	})
	roots := idx.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{roots[0].ID, roots[1].ID, roots[2].ID})
}

func TestNormalizeRecords(t *testing.T) {
	in := []CollectionRecord{
		{ID: 1, Key: "P", Name: "parent"},
		{ID: 2, Key: "C1", Name: "by id", ParentID: 1},
		{ID: 3, Key: "C2", Name: "by key", ParentKey: "P"},
		{ID: 4, Key: "C3", Name: "dangling", ParentKey: "NOPE"},
		{ID: 5, Key: "C4", Name: "dangling id", ParentID: 99},
	}
	out, dangling := NormalizeRecords(in)
	require.Len(t, out, 5)

	assert.Equal(t, "P", out[1].ParentKey)
	assert.Equal(t, int64(1), out[2].ParentID)
	assert.True(t, out[3].IsRoot())
	assert.True(t, out[4].IsRoot())
	assert.ElementsMatch(t, []int64{4, 5}, dangling)
}

func TestBuildTree(t *testing.T) {
	records, _ := NormalizeRecords(sampleForest())
	root := BuildTree(BuildParentIndex(records), func(id int64) bool { return id == 1 })

	require.Len(t, root.Children, 2)
	research := root.Children[0]
	assert.Equal(t, "Research", research.Record.Name)
	assert.Equal(t, 0, research.Depth())
	require.Len(t, research.Children, 1)
	assert.Equal(t, 1, research.Children[0].Depth())

	visible := root.Flatten()[1:]
	// Research expanded, Papers collapsed, teaching collapsed
	assert.Len(t, visible, 3)

	leaf := root.Find(3)
	require.NotNil(t, leaf)
	leaf.ExpandAncestors()
	assert.Len(t, root.Flatten()[1:], 4)
}
