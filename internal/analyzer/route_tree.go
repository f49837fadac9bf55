package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// TreeNodeKind tags route tree nodes
type TreeNodeKind int

const (
	// TreeRoot is the synthetic root
	TreeRoot TreeNodeKind = iota
	// TreeBranch stands for one conditional statement
	TreeBranch
	// TreeLeaf wraps exactly one block
	TreeLeaf
)

// String returns the kind name
func (k TreeNodeKind) String() string {
	switch k {
	case TreeRoot:
		return "root"
	case TreeBranch:
		return "branch"
	case TreeLeaf:
		return "leaf"
	}
	return fmt.Sprintf("TreeNodeKind(%d)", int(k))
}

// RouteTreeNode is a node of the route tree. The node owns its children;
// the parent reference is a back link.
type RouteTreeNode struct {
	kind        TreeNodeKind
	conditional *parser.Node // branch nodes only
	block       *YieldBlock  // leaf nodes only
	parent      *RouteTreeNode
	children    []*RouteTreeNode
	depth       int
}

// Kind returns the node kind
func (n *RouteTreeNode) Kind() TreeNodeKind { return n.kind }

// IsBranch reports whether the node stands for a conditional
func (n *RouteTreeNode) IsBranch() bool { return n.kind == TreeBranch }

// IsLeaf reports whether the node wraps a block
func (n *RouteTreeNode) IsLeaf() bool { return n.kind == TreeLeaf }

// IsTerminal reports whether the node has no children
func (n *RouteTreeNode) IsTerminal() bool { return len(n.children) == 0 }

// Block returns the wrapped block of a leaf, or nil
func (n *RouteTreeNode) Block() *YieldBlock { return n.block }

// Conditional returns the conditional statement of a branch node, or nil
func (n *RouteTreeNode) Conditional() *parser.Node { return n.conditional }

// ElseClause returns the else clause of a branch node's conditional, or nil
func (n *RouteTreeNode) ElseClause() *parser.Node { return n.conditional.ElseClause() }

// Parent returns the parent node, nil for the root
func (n *RouteTreeNode) Parent() *RouteTreeNode { return n.parent }

// Children returns the children in attach order
func (n *RouteTreeNode) Children() []*RouteTreeNode { return n.children }

// Depth returns the distance from the root
func (n *RouteTreeNode) Depth() int { return n.depth }

// Key returns a stable identity for the node within its function
func (n *RouteTreeNode) Key() string {
	switch n.kind {
	case TreeBranch:
		return fmt.Sprintf("if#%d", n.conditional.ID)
	case TreeLeaf:
		return n.block.Label()
	}
	return "root"
}

// Label returns a human-readable description of the node
func (n *RouteTreeNode) Label() string {
	switch n.kind {
	case TreeBranch:
		return fmt.Sprintf("if %s", n.conditional.Text)
	case TreeLeaf:
		return n.block.Summary()
	}
	return "root"
}

// Line returns the first source line of the node
func (n *RouteTreeNode) Line() int {
	switch n.kind {
	case TreeBranch:
		return n.conditional.Location.StartLine
	case TreeLeaf:
		return n.block.StartLine()
	}
	return 0
}

// chain returns the ancestors of the node excluding the root, outermost
// first, followed by the node itself
func (n *RouteTreeNode) chain() []*RouteTreeNode {
	var chain []*RouteTreeNode
	for p := n; p != nil && p.kind != TreeRoot; p = p.parent {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// terminals returns the terminal descendants of the node depth-first in
// tree order
func (n *RouteTreeNode) terminals() []*RouteTreeNode {
	var out []*RouteTreeNode
	var visit func(*RouteTreeNode)
	visit = func(node *RouteTreeNode) {
		for _, child := range node.children {
			if child.IsTerminal() {
				out = append(out, child)
			} else {
				visit(child)
			}
		}
	}
	visit(n)
	return out
}

func (n *RouteTreeNode) attach(child *RouteTreeNode) {
	child.parent = n
	child.depth = n.depth + 1
	n.children = append(n.children, child)
}

// RouteTree is the hierarchy of blocks by enclosing conditional structure.
// It holds at most one branch node per conditional.
type RouteTree struct {
	root     *RouteTreeNode
	branches map[parser.NodeID]*RouteTreeNode
	leaves   []*RouteTreeNode
	size     int
}

// Root returns the synthetic root
func (t *RouteTree) Root() *RouteTreeNode { return t.root }

// Size returns the number of nodes, root included
func (t *RouteTree) Size() int { return t.size }

// BranchCount returns the number of branch nodes
func (t *RouteTree) BranchCount() int { return len(t.branches) }

// Leaves returns the leaves in block order
func (t *RouteTree) Leaves() []*RouteTreeNode { return t.leaves }

// Branch returns the branch node of a conditional, if present
func (t *RouteTree) Branch(conditional parser.NodeID) (*RouteTreeNode, bool) {
	node, ok := t.branches[conditional]
	return node, ok
}

// Walk visits the tree in pre-order; returning false skips the children
func (t *RouteTree) Walk(visit func(*RouteTreeNode) bool) {
	var walk func(*RouteTreeNode)
	walk = func(n *RouteTreeNode) {
		if !visit(n) {
			return
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
}

// treeBuilder places blocks into a route tree
type treeBuilder struct {
	fn       *parser.Function
	tree     *RouteTree
	maxNodes int
}

// BuildRouteTree arranges blocks into a route tree. maxNodes caps the tree
// size; zero or less means no cap.
func BuildRouteTree(fn *parser.Function, blocks []*YieldBlock, maxNodes int) (*RouteTree, error) {
	b := &treeBuilder{
		fn: fn,
		tree: &RouteTree{
			root:     &RouteTreeNode{kind: TreeRoot},
			branches: make(map[parser.NodeID]*RouteTreeNode),
			size:     1,
		},
		maxNodes: maxNodes,
	}

	for _, block := range blocks {
		if err := b.place(block); err != nil {
			return nil, err
		}
	}
	return b.tree, nil
}

func (b *treeBuilder) place(block *YieldBlock) error {
	insertion := b.tree.root
	resolved := false

	for _, conditional := range b.enclosingConditionals(block.Parent()) {
		node, ok := b.tree.branches[conditional.ID]
		if !ok {
			node = &RouteTreeNode{kind: TreeBranch, conditional: conditional}
			if err := b.attach(insertion, node); err != nil {
				return err
			}
			b.tree.branches[conditional.ID] = node
		}
		insertion = node
		resolved = true
	}

	// the directly enclosing conditional wins over the walk position
	if direct := b.directConditional(block.Parent()); direct != nil {
		if node, ok := b.tree.branches[direct.ID]; ok {
			insertion = node
			resolved = true
		}
	}

	if !resolved {
		if sibling := b.leafWithParent(block.Parent()); sibling != nil {
			insertion = sibling.parent
		}
	}

	leaf := &RouteTreeNode{kind: TreeLeaf, block: block}
	if err := b.attach(insertion, leaf); err != nil {
		return err
	}
	b.tree.leaves = append(b.tree.leaves, leaf)
	return nil
}

func (b *treeBuilder) attach(parent, child *RouteTreeNode) error {
	if b.maxNodes > 0 && b.tree.size+1 > b.maxNodes {
		return &AnalysisError{
			Function:  b.fn.Name,
			Line:      b.fn.Location.StartLine,
			Construct: fmt.Sprintf("route tree exceeds %d nodes", b.maxNodes),
			Err:       ErrTooComplex,
		}
	}
	parent.attach(child)
	b.tree.size++
	return nil
}

// enclosingConditionals returns the conditionals enclosing node inside the
// function body, outermost first
func (b *treeBuilder) enclosingConditionals(node *parser.Node) []*parser.Node {
	var chain []*parser.Node
	for n := node; n != nil && n != b.fn.Body && n != b.fn.Node; n = n.Parent {
		if n.IsConditional() {
			chain = append(chain, n)
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// directConditional returns node itself when it is a conditional, otherwise
// the nearest enclosing conditional inside the function body
func (b *treeBuilder) directConditional(node *parser.Node) *parser.Node {
	for n := node; n != nil && n != b.fn.Body && n != b.fn.Node; n = n.Parent {
		if n.IsConditional() {
			return n
		}
	}
	return nil
}

func (b *treeBuilder) leafWithParent(parent *parser.Node) *RouteTreeNode {
	for _, leaf := range b.tree.leaves {
		if leaf.block.parent.ID == parent.ID {
			return leaf
		}
	}
	return nil
}
