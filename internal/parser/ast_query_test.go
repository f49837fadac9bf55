package parser

// Tree queries used by the front-end tests

// EnclosingOfKind returns the nearest strict ancestor of the given kind
func (n *Node) EnclosingOfKind(kind NodeKind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// Find finds all nodes in the subtree matching a predicate, in document order
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var results []*Node
	n.Walk(func(node *Node) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindByKind finds all nodes of a specific kind
func (n *Node) FindByKind(kind NodeKind) []*Node {
	return n.Find(func(node *Node) bool {
		return node.Kind == kind
	})
}

// FindFirst returns the first node in document order matching the predicate
func (n *Node) FindFirst(predicate func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if predicate(node) {
			found = node
			return false
		}
		return true
	})
	return found
}
