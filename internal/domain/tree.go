package domain

// TreeNode represents a collection in a navigable tree
type TreeNode struct {
	Record     CollectionRecord
	Children   []*TreeNode
	IsExpanded bool
	Parent     *TreeNode
}

// IsRoot reports whether this is the synthetic library root
func (n *TreeNode) IsRoot() bool {
	return n.Parent == nil
}

// HasChildren reports whether the node has sub-collections
func (n *TreeNode) HasChildren() bool {
	return len(n.Children) > 0
}

// BuildTree turns a ParentIndex into a tree under a synthetic root that is
// always expanded. Collections are collapsed unless expanded reports true
// for their id.
func BuildTree(idx ParentIndex, expanded func(id int64) bool) *TreeNode {
	root := &TreeNode{IsExpanded: true}
	nodes := map[int64]*TreeNode{}

	idx.Walk(func(r CollectionRecord, depth int) bool {
		parent := root
		if depth > 0 {
			if p, ok := nodes[r.ParentID]; ok {
				parent = p
			}
		}
		node := &TreeNode{Record: r, Parent: parent}
		if expanded != nil {
			node.IsExpanded = expanded(r.ID)
		}
		parent.Children = append(parent.Children, node)
		nodes[r.ID] = node
		return true
	})
	return root
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *TreeNode) Flatten() []*TreeNode {
	var result []*TreeNode
	n.flattenRecursive(&result)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]*TreeNode) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result)
		}
	}
}

// Find returns the node holding the collection id
func (n *TreeNode) Find(id int64) *TreeNode {
	if !n.IsRoot() && n.Record.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Depth returns the depth of this node in the tree; top-level collections
// are at depth 0
func (n *TreeNode) Depth() int {
	depth := -1
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// ExpandAncestors expands every ancestor so the node becomes visible
func (n *TreeNode) ExpandAncestors() {
	for p := n.Parent; p != nil; p = p.Parent {
		p.IsExpanded = true
	}
}

// Toggle expands or collapses the node
func (n *TreeNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *TreeNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *TreeNode) Collapse() {
	n.IsExpanded = false
}
