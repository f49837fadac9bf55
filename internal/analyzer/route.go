package analyzer

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Route is one path through the route tree: a possible runtime order of
// blocks, with the branch nodes it passes through.
type Route struct {
	nodes      []*RouteTreeNode
	superseded bool
	// from is the route this one was extended from
	from *Route
	// stopped is set when a propagated stop consumed the route
	stopped bool
}

func newRoute(nodes ...*RouteTreeNode) *Route {
	return &Route{nodes: nodes}
}

// extend returns a new route with nodes appended
func (r *Route) extend(nodes ...*RouteTreeNode) *Route {
	extended := make([]*RouteTreeNode, 0, len(r.nodes)+len(nodes))
	extended = append(extended, r.nodes...)
	extended = append(extended, nodes...)
	return &Route{nodes: extended, from: r}
}

// Nodes returns the route's nodes in order
func (r *Route) Nodes() []*RouteTreeNode { return r.nodes }

// Len returns the number of nodes
func (r *Route) Len() int { return len(r.nodes) }

// Last returns the final node, or nil for an empty route
func (r *Route) Last() *RouteTreeNode {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[len(r.nodes)-1]
}

// Superseded reports whether a longer route replaced this one
func (r *Route) Superseded() bool { return r.superseded }

// HasBreak reports whether a leaf along the route ends with a stop
func (r *Route) HasBreak() bool {
	for _, n := range r.nodes {
		if n.IsLeaf() && n.block.HasBreak() {
			return true
		}
	}
	return false
}

// contains reports whether node is on the route
func (r *Route) contains(node *RouteTreeNode) bool {
	for _, n := range r.nodes {
		if n == node {
			return true
		}
	}
	return false
}

// Leaves returns the leaf nodes of the route
func (r *Route) Leaves() []*RouteTreeNode {
	var leaves []*RouteTreeNode
	for _, n := range r.nodes {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

// Emissions returns the emitted values along the route, leaving out stops,
// construction-bound blocks and all-break blocks
func (r *Route) Emissions() []Statement {
	var emits []Statement
	for _, n := range r.nodes {
		if !n.IsLeaf() || n.block.ConstructionBound() || n.block.AllBreak() {
			continue
		}
		emits = append(emits, n.block.Emissions()...)
	}
	return emits
}

// Path returns the node keys joined by arrows
func (r *Route) Path() string {
	keys := make([]string, 0, len(r.nodes))
	for _, n := range r.nodes {
		keys = append(keys, n.Key())
	}
	return strings.Join(keys, " -> ")
}

// Fingerprint returns a hash of the node sequence. It is stable across runs
// for the same source.
func (r *Route) Fingerprint() uint64 {
	d := xxhash.New()
	for _, n := range r.nodes {
		_, _ = d.WriteString(n.Key())
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
