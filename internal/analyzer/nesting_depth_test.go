package analyzer

import (
	"testing"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// node builds a lowered node with children for hand-made trees
func node(kind parser.NodeKind, line int, children ...*parser.Node) *parser.Node {
	n := parser.NewNode(kind)
	n.Location = parser.Location{StartLine: line, EndLine: line}
	for _, child := range children {
		n.AddChild(child)
	}
	return n
}

func function(name string, body *parser.Node) *parser.Function {
	fn := node(parser.NodeFunction, 1, body)
	fn.Name = name
	return &parser.Function{Name: name, Node: fn, Body: body, Location: fn.Location}
}

func TestCalculateMaxNestingDepth_NilFunction(t *testing.T) {
	result := CalculateMaxNestingDepth(nil)

	if result.MaxDepth != 0 {
		t.Errorf("Expected max depth 0 for nil function, got %d", result.MaxDepth)
	}
}

func TestCalculateMaxNestingDepth_StraightLine(t *testing.T) {
	fn := function("gen", node(parser.NodeBlock, 1,
		node(parser.NodeEmit, 2),
		node(parser.NodeEmit, 3),
	))

	result := CalculateMaxNestingDepth(fn)

	if result.MaxDepth != 0 {
		t.Errorf("Expected max depth 0 for straight-line function, got %d", result.MaxDepth)
	}
	if result.FunctionName != "gen" {
		t.Errorf("Expected function name 'gen', got '%s'", result.FunctionName)
	}
}

func TestCalculateMaxNestingDepth_SingleIf(t *testing.T) {
	fn := function("gen", node(parser.NodeBlock, 1,
		node(parser.NodeIf, 2,
			node(parser.NodeBlock, 2, node(parser.NodeEmit, 3)),
			node(parser.NodeElse, 4, node(parser.NodeBlock, 4, node(parser.NodeEmit, 5))),
		),
	))

	result := CalculateMaxNestingDepth(fn)

	if result.MaxDepth != 1 {
		t.Errorf("Expected max depth 1 for single if statement, got %d", result.MaxDepth)
	}
	if result.DeepestNestingLine != 2 {
		t.Errorf("Expected deepest nesting at line 2, got %d", result.DeepestNestingLine)
	}
}

func TestCalculateMaxNestingDepth_LoopInsideIf(t *testing.T) {
	fn := function("gen", node(parser.NodeBlock, 1,
		node(parser.NodeIf, 2,
			node(parser.NodeBlock, 2,
				node(parser.NodeLoop, 3,
					node(parser.NodeBlock, 3, node(parser.NodeEmit, 4)),
				),
			),
		),
	))

	result := CalculateMaxNestingDepth(fn)

	if result.MaxDepth != 2 {
		t.Errorf("Expected max depth 2, got %d", result.MaxDepth)
	}
	if result.DeepestNestingLine != 3 {
		t.Errorf("Expected deepest nesting at line 3, got %d", result.DeepestNestingLine)
	}
}

func TestCalculateMaxNestingDepth_NestedFunctionIgnored(t *testing.T) {
	inner := node(parser.NodeFunction, 2,
		node(parser.NodeBlock, 2,
			node(parser.NodeIf, 3, node(parser.NodeBlock, 3, node(parser.NodeEmit, 4))),
		),
	)
	fn := function("outer", node(parser.NodeBlock, 1, inner, node(parser.NodeEmit, 5)))

	result := CalculateMaxNestingDepth(fn)

	if result.MaxDepth != 0 {
		t.Errorf("Expected nested function to be ignored, got depth %d", result.MaxDepth)
	}
}
