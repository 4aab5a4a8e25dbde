package domain

import (
	"errors"
	"fmt"
	"strings"
)

// PathSeparator joins ancestor names in a composed path
const PathSeparator = " / "

// MaxPathDepth bounds the ancestor walk so corrupt parent links cannot hang
// path composition
const MaxPathDepth = 64

// ErrStructural marks catalog data that violates the forest shape: parent
// cycles, chains deeper than MaxPathDepth, or dangling parents
var ErrStructural = errors.New("structural error")

// PathComposer composes "Root / Child / Leaf" paths for records of one
// library. Results are memoized, so composing every record of a library
// stays linear.
type PathComposer struct {
	byKey map[string]CollectionRecord
	byID  map[int64]CollectionRecord
	memo  map[int64]composed
}

// composed is a memoized path and its segment count
type composed struct {
	path  string
	depth int
}

// NewPathComposer indexes records for ancestor lookups
func NewPathComposer(records []CollectionRecord) *PathComposer {
	pc := &PathComposer{
		byKey: make(map[string]CollectionRecord, len(records)),
		byID:  make(map[int64]CollectionRecord, len(records)),
		memo:  make(map[int64]composed, len(records)),
	}
	for _, r := range records {
		if r.Key != "" {
			pc.byKey[r.Key] = r
		}
		pc.byID[r.ID] = r
	}
	return pc
}

// Parent returns the record's parent if it resolves among the indexed records
func (pc *PathComposer) Parent(r CollectionRecord) (CollectionRecord, bool) {
	if r.ParentKey != "" {
		if p, ok := pc.byKey[r.ParentKey]; ok {
			return p, true
		}
	}
	if r.ParentID != 0 {
		if p, ok := pc.byID[r.ParentID]; ok {
			return p, true
		}
	}
	return CollectionRecord{}, false
}

// Compose walks from r to its root and joins the names root-to-leaf.
//
// On a cycle, a chain deeper than MaxPathDepth, or a parent reference that
// does not resolve, the path gathered so far is returned together with an
// error wrapping ErrStructural.
func (pc *PathComposer) Compose(r CollectionRecord) (string, error) {
	if m, ok := pc.memo[r.ID]; ok {
		return m.path, nil
	}

	names := []string{r.Name}
	// extra counts the segments folded into a joined memoized prefix
	extra := 0
	seen := map[int64]bool{r.ID: true}
	cur := r
	var structErr error

	for depth := 1; ; depth++ {
		if cur.IsRoot() {
			break
		}
		parent, ok := pc.Parent(cur)
		if !ok {
			structErr = fmt.Errorf("%w: collection %d has unresolvable parent (key=%q id=%d)",
				ErrStructural, cur.ID, cur.ParentKey, cur.ParentID)
			break
		}
		if seen[parent.ID] {
			structErr = fmt.Errorf("%w: parent cycle through collection %d", ErrStructural, parent.ID)
			break
		}
		if depth >= MaxPathDepth {
			structErr = fmt.Errorf("%w: collection %d is nested deeper than %d", ErrStructural, r.ID, MaxPathDepth)
			break
		}
		// A memoized ancestor holds the rest of the chain unless joining it
		// would pass the depth bound, in which case the walk goes on
		if m, ok := pc.memo[parent.ID]; ok && len(names)+m.depth <= MaxPathDepth {
			names = append(names, m.path)
			extra = m.depth - 1
			break
		}
		seen[parent.ID] = true
		names = append(names, parent.Name)
		cur = parent
	}

	// names is leaf-to-root; reverse in place
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	path := strings.Join(names, PathSeparator)

	if structErr != nil {
		return path, structErr
	}
	pc.memo[r.ID] = composed{path: path, depth: len(names) + extra}
	return path, nil
}
