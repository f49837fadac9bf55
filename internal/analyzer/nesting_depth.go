package analyzer

import (
	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// NestingDepthResult holds the maximum nesting depth and related metadata for a function
type NestingDepthResult struct {
	// Maximum nesting depth found in the function
	MaxDepth int

	// Function information
	FunctionName string
	StartLine    int
	EndLine      int

	// Location of deepest nesting (line number)
	DeepestNestingLine int
}

// CalculateMaxNestingDepth computes the maximum control-flow nesting depth of
// a function body. Nested functions are separate units and are not entered.
func CalculateMaxNestingDepth(fn *parser.Function) *NestingDepthResult {
	if fn == nil || fn.Node == nil {
		return &NestingDepthResult{}
	}

	result := &NestingDepthResult{
		FunctionName: fn.Name,
		StartLine:    fn.Node.Location.StartLine,
		EndLine:      fn.Node.Location.EndLine,
	}

	// The body itself is depth 0
	if fn.Body != nil {
		for _, stmt := range fn.Body.Children {
			traverseForNesting(stmt, 0, result)
		}
	}

	return result
}

// traverseForNesting recursively traverses the lowered tree to find maximum nesting depth
func traverseForNesting(node *parser.Node, currentDepth int, result *NestingDepthResult) {
	if node == nil || node.Kind == parser.NodeFunction {
		return
	}

	newDepth := currentDepth
	if isNestingNode(node) {
		newDepth = currentDepth + 1

		if newDepth > result.MaxDepth {
			result.MaxDepth = newDepth
			result.DeepestNestingLine = node.Location.StartLine
		}
	}

	for _, child := range node.Children {
		traverseForNesting(child, newDepth, result)
	}
}

// isNestingNode determines if a node kind increases nesting depth
func isNestingNode(node *parser.Node) bool {
	switch node.Kind {
	case parser.NodeIf, parser.NodeLoop, parser.NodeTry, parser.NodeSwitch:
		return true
	default:
		// else and case clauses sit at the level of their statement
		return false
	}
}
