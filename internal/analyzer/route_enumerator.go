package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// routeEnumerator walks the route tree and accumulates routes.
//
// A route is open while it has not broken and has not been superseded by a
// longer route. Each participating root child extends the open routes, or
// the dangling ones once every open route has broken; a
// route extended into a longer one is superseded unless it also stays a
// complete path on its own (the fall-through around an if without else when
// ImplicitElse is set).
type routeEnumerator struct {
	tree   *RouteTree
	opts   Options
	fn     *parser.Function
	routes []*Route
}

// EnumerateRoutes produces the routes of a built tree in accumulation order
func EnumerateRoutes(fn *parser.Function, tree *RouteTree, opts Options) ([]*Route, error) {
	e := &routeEnumerator{tree: tree, opts: opts, fn: fn}
	if err := e.run(); err != nil {
		return nil, err
	}
	return e.routes, nil
}

func (e *routeEnumerator) run() error {
	for _, child := range e.tree.root.children {
		if child.IsLeaf() && child.block.ConstructionBound() {
			continue
		}

		var err error
		if child.IsTerminal() {
			err = e.terminalStep(child)
		} else {
			err = e.branchStep(child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *routeEnumerator) add(route *Route) error {
	if e.opts.MaxRoutes > 0 && len(e.routes) >= e.opts.MaxRoutes {
		return &AnalysisError{
			Function:  e.fn.Name,
			Line:      e.fn.Location.StartLine,
			Construct: fmt.Sprintf("more than %d routes", e.opts.MaxRoutes),
			Err:       ErrTooComplex,
		}
	}
	e.routes = append(e.routes, route)
	return nil
}

func (e *routeEnumerator) open() []*Route {
	var open []*Route
	for _, r := range e.routes {
		if !r.superseded && !r.HasBreak() {
			open = append(open, r)
		}
	}
	return open
}

// dangling returns the unbroken routes none of whose extensions can still
// continue: every route derived from them broke or was consumed by a stop.
// After a guard such as `if c: return` the branch seed is dangling, and the
// code after the guard continues it.
func (e *routeEnumerator) dangling() []*Route {
	live := make(map[*Route]bool)
	for _, r := range e.routes {
		if r.from != nil && !r.HasBreak() && !r.stopped {
			live[r.from] = true
		}
	}

	var out []*Route
	for _, r := range e.routes {
		if !r.HasBreak() && !r.stopped && !live[r] {
			out = append(out, r)
		}
	}
	return out
}

// base returns the routes the next root child extends: the open routes, or
// the dangling ones when every open route has broken. Empty means seed.
func (e *routeEnumerator) base() []*Route {
	if open := e.open(); len(open) > 0 {
		return open
	}
	return e.dangling()
}

// terminalStep handles a leaf directly under the root: it seeds a route when
// every route has broken, otherwise it extends the base routes
func (e *routeEnumerator) terminalStep(node *RouteTreeNode) error {
	base := e.base()
	if len(base) == 0 {
		return e.add(newRoute(node))
	}
	for _, r := range base {
		if err := e.add(r.extend(node)); err != nil {
			return err
		}
		r.superseded = true
	}
	return nil
}

// branchStep handles a branch node directly under the root: every base route
// (or a seed made of the branch itself) is extended once per terminal of the
// branch, in tree order
func (e *routeEnumerator) branchStep(branch *RouteTreeNode) error {
	base := e.base()
	if len(base) == 0 {
		seed := newRoute(branch)
		if err := e.add(seed); err != nil {
			return err
		}
		base = []*Route{seed}
	}

	var produced []*Route
	for _, terminal := range branch.terminals() {
		for _, r := range base {
			route := r.extend(relativeChain(r, terminal)...)
			if err := e.add(route); err != nil {
				return err
			}
			produced = append(produced, route)
		}

		if terminal.IsLeaf() && terminal.block.AllBreak() {
			if err := e.propagateStop(produced, terminal); err != nil {
				return err
			}
		}
	}

	// a dangling base that stays open around the branch is reopened
	keepBase := e.opts.ImplicitElse && fallsThrough(branch, branch.conditional)
	for _, r := range base {
		r.superseded = !keepBase
	}
	return nil
}

// propagateStop appends a stop-only leaf to the routes produced earlier in
// the same step that reach it: routes that have not broken and whose last
// leaf precedes the stop inside the same arm of the stop's conditional
func (e *routeEnumerator) propagateStop(produced []*Route, stop *RouteTreeNode) error {
	conditional := stop.parent.conditional
	if conditional == nil {
		return nil
	}
	stopArm := armOf(conditional, stop.block.parent)

	for _, route := range produced {
		if route.superseded || route.HasBreak() || route.contains(stop) {
			continue
		}
		last := route.Last()
		if last == nil || !last.IsLeaf() || last.block.sequenceID >= stop.block.sequenceID {
			continue
		}
		if arm := armOf(conditional, last.block.parent); arm == nil || arm != stopArm {
			continue
		}

		if err := e.add(route.extend(stop)); err != nil {
			return err
		}
		route.superseded = true
		route.stopped = true
	}
	return nil
}

// relativeChain returns the tree path from the root to terminal, without the
// part the route already ends in
func relativeChain(r *Route, terminal *RouteTreeNode) []*RouteTreeNode {
	chain := terminal.chain()
	last := r.Last()
	for i, n := range chain {
		if n == last {
			return chain[i+1:]
		}
	}
	return chain
}

// armOf returns the child of conditional (its consequence block or its else
// clause) that contains node, or nil when node is outside the conditional
func armOf(conditional, node *parser.Node) *parser.Node {
	for n := node; n != nil; n = n.Parent {
		if n.Parent == conditional {
			return n
		}
	}
	return nil
}

// fallsThrough reports whether execution can pass conditional without
// entering an arm that holds a block: a missing else, an empty arm, or an
// else-if chain that itself falls through
func fallsThrough(branch *RouteTreeNode, conditional *parser.Node) bool {
	if len(conditional.Children) == 0 || !armHasBlocks(branch, conditional.Children[0]) {
		return true
	}

	elseClause := conditional.ElseClause()
	if elseClause == nil {
		return true
	}
	// an else-if may be preceded by statements lowered into the else clause,
	// such as a Go init statement
	if n := len(elseClause.Children); n > 0 && elseClause.Children[n-1].IsConditional() {
		nested := elseClause.Children[n-1]
		if armHasBlocksOutside(branch, elseClause, nested) {
			return false
		}
		return fallsThrough(branch, nested)
	}
	return !armHasBlocks(branch, elseClause)
}

func armHasBlocks(branch *RouteTreeNode, arm *parser.Node) bool {
	return armHasBlocksOutside(branch, arm, nil)
}

// armHasBlocksOutside reports whether a block of branch lies in arm but not
// inside skip
func armHasBlocksOutside(branch *RouteTreeNode, arm, skip *parser.Node) bool {
	for _, terminal := range branch.terminals() {
		parent := terminal.block.parent
		if parent != arm && !arm.IsAncestorOf(parent) {
			continue
		}
		if skip != nil && (parent == skip || skip.IsAncestorOf(parent)) {
			continue
		}
		return true
	}
	return false
}
