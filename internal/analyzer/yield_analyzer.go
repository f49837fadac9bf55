package analyzer

import (
	"errors"
	"fmt"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// Default complexity caps
const (
	DefaultMaxRoutes    = 4096
	DefaultMaxTreeNodes = 10000
)

var (
	// ErrUnsupportedConstruct means analysis was declined because an emit or
	// stop sits inside switch-style branching. It never means zero routes.
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrTooComplex means the route tree or route set exceeded its cap
	ErrTooComplex = errors.New("too complex")
)

// AnalysisError describes why a function was not analyzed
type AnalysisError struct {
	Function  string
	Line      int
	Construct string
	Err       error
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.Construct == "" {
		return fmt.Sprintf("%s (line %d): %v", e.Function, e.Line, e.Err)
	}
	return fmt.Sprintf("%s (line %d): %v: %s", e.Function, e.Line, e.Err, e.Construct)
}

// Unwrap returns the sentinel error
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Options tune one analysis
type Options struct {
	// MaxRoutes caps the accumulated route count; zero or less disables it
	MaxRoutes int
	// MaxTreeNodes caps the route tree size; zero or less disables it
	MaxTreeNodes int
	// ImplicitElse keeps the routes entering a conditional that can be
	// passed without running an arm, so later nodes are reached around it
	ImplicitElse bool
}

// DefaultOptions returns the default caps with implicit else disabled
func DefaultOptions() Options {
	return Options{
		MaxRoutes:    DefaultMaxRoutes,
		MaxTreeNodes: DefaultMaxTreeNodes,
	}
}

// Analysis is the result of analyzing one generator function
type Analysis struct {
	Function *parser.Function
	Blocks   []*YieldBlock
	Tree     *RouteTree
	routes   []*Route
}

// Routes returns the complete routes, those not superseded by a longer
// route, in accumulation order
func (a *Analysis) Routes() []*Route {
	var routes []*Route
	for _, r := range a.routes {
		if !r.superseded {
			routes = append(routes, r)
		}
	}
	return routes
}

// AllRoutes returns every accumulated route, including superseded ones
func (a *Analysis) AllRoutes() []*Route {
	return a.routes
}

// Analyze groups the function's statements into blocks, builds the route
// tree and enumerates its routes. It returns a nil Analysis with an
// *AnalysisError wrapping ErrUnsupportedConstruct or ErrTooComplex when the
// function is declined.
func Analyze(fn *parser.Function, opts Options) (*Analysis, error) {
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("function has no body")
	}

	blocks, err := GroupBlocks(fn)
	if err != nil {
		return nil, err
	}

	tree, err := BuildRouteTree(fn, blocks, opts.MaxTreeNodes)
	if err != nil {
		return nil, err
	}

	routes, err := EnumerateRoutes(fn, tree, opts)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Function: fn,
		Blocks:   blocks,
		Tree:     tree,
		routes:   routes,
	}, nil
}
