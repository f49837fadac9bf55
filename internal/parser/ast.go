package parser

import "fmt"

// NodeKind represents the kind of a lowered syntax node
type NodeKind int

// Lowered node kinds shared by every language front end
const (
	NodeUnknown NodeKind = iota

	// Structure
	NodeModule
	NodeFunction
	NodeBlock

	// Control flow
	NodeIf
	NodeElse
	NodeSwitch // multi-way branching: switch, match, select
	NodeCase
	NodeLoop
	NodeTry

	// Generator operations
	NodeEmit
	NodeStop

	// Everything else
	NodeStatement
	NodeDeclaration
	NodeConstruction
	NodeIdentifier
	NodeExpression
)

var nodeKindNames = map[NodeKind]string{
	NodeUnknown:      "Unknown",
	NodeModule:       "Module",
	NodeFunction:     "Function",
	NodeBlock:        "Block",
	NodeIf:           "If",
	NodeElse:         "Else",
	NodeSwitch:       "Switch",
	NodeCase:         "Case",
	NodeLoop:         "Loop",
	NodeTry:          "Try",
	NodeEmit:         "Emit",
	NodeStop:         "Stop",
	NodeStatement:    "Statement",
	NodeDeclaration:  "Declaration",
	NodeConstruction: "Construction",
	NodeIdentifier:   "Identifier",
	NodeExpression:   "Expression",
}

// String returns the kind name
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// NodeID is a stable, provider-assigned node identity. IDs are assigned in
// pre-order over the module tree, so they follow document order.
type NodeID int

// NoNode is the ID of a node that has not been numbered yet
const NoNode NodeID = -1

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String formats the location as file:line:col
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.StartLine, l.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents a lowered syntax node.
//
// Emit nodes hold the emitted expression as their only child (if any).
// If nodes hold the consequence first and an optional Else node second;
// the condition is kept as source text only.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Name     string // declared variable, identifier, function or constructed type name
	Text     string // source text (condition for If, expression text otherwise)
	Location Location
	Parent   *Node
	Children []*Node
}

// NewNode creates a new node of the given kind
func NewNode(kind NodeKind) *Node {
	return &Node{
		ID:       NoNode,
		Kind:     kind,
		Children: []*Node{},
	}
}

// AddChild adds a child node
func (n *Node) AddChild(child *Node) {
	if child != nil {
		child.Parent = n
		n.Children = append(n.Children, child)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s#%d(%s)", n.Kind, n.ID, n.Name)
	}
	return fmt.Sprintf("%s#%d", n.Kind, n.ID)
}

// IsConditional reports whether the node is a two-way conditional statement
func (n *Node) IsConditional() bool {
	return n != nil && n.Kind == NodeIf
}

// IsMultiWay reports whether the node is a multi-way branching construct
func (n *Node) IsMultiWay() bool {
	return n != nil && n.Kind == NodeSwitch
}

// ElseClause returns the else clause of an If node, or nil
func (n *Node) ElseClause() *Node {
	if n == nil || n.Kind != NodeIf {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind == NodeElse {
			return child
		}
	}
	return nil
}

// Value returns the emitted expression of an Emit node, or nil
func (n *Node) Value() *Node {
	if n == nil || n.Kind != NodeEmit || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// IsAncestorOf reports whether n is a strict ancestor of other
func (n *Node) IsAncestorOf(other *Node) bool {
	if n == nil || other == nil {
		return false
	}
	for p := other.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk traverses the subtree in pre-order. Returning false from the visitor
// skips the children of the visited node.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil || !visitor(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// Language identifies a source language supported by the front ends
type Language string

// Supported languages
const (
	LanguagePython Language = "python"
	LanguageCSharp Language = "csharp"
	LanguageGo     Language = "go"
)

// Function is one analyzable generator-style function: a Python generator,
// a C# iterator or a Go range-over-func iterator.
type Function struct {
	Name     string
	Language Language
	Node     *Node // the NodeFunction node
	Body     *Node // the function body block
	Location Location
}

// Statements returns the emit and stop statements of the function body in
// document order. Nested function bodies are not entered.
func (f *Function) Statements() []*Node {
	if f == nil || f.Body == nil {
		return nil
	}
	var stmts []*Node
	f.Body.Walk(func(node *Node) bool {
		switch node.Kind {
		case NodeFunction:
			return false
		case NodeEmit, NodeStop:
			stmts = append(stmts, node)
			return false
		}
		return true
	})
	return stmts
}

// isGenerator reports whether a function body emits at least one value
func isGenerator(body *Node) bool {
	if body == nil {
		return false
	}
	found := false
	body.Walk(func(node *Node) bool {
		if found || node.Kind == NodeFunction {
			return false
		}
		if node.Kind == NodeEmit {
			found = true
			return false
		}
		return true
	})
	return found
}

// assignIDs numbers every node of the tree in pre-order
func assignIDs(root *Node) {
	next := NodeID(0)
	root.Walk(func(node *Node) bool {
		node.ID = next
		next++
		return true
	})
}

// setFile stamps the file name on every location in the tree
func setFile(root *Node, file string) {
	if file == "" {
		return
	}
	root.Walk(func(node *Node) bool {
		node.Location.File = file
		return true
	})
}
