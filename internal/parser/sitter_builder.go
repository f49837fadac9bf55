package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// sitterBuilder holds the state shared by the tree-sitter based front ends
type sitterBuilder struct {
	source    []byte
	language  Language
	scope     []string
	functions []*Function
}

func (b *sitterBuilder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.source)
}

func (b *sitterBuilder) newNode(kind NodeKind, n *sitter.Node) *Node {
	node := NewNode(kind)
	if n != nil {
		node.Location = sitterLocation(n)
	}
	return node
}

// statement creates an inert statement node carrying its source text
func (b *sitterBuilder) statement(n *sitter.Node) *Node {
	node := b.newNode(NodeStatement, n)
	node.Text = compact(b.text(n))
	return node
}

func (b *sitterBuilder) pushScope(name string) {
	b.scope = append(b.scope, name)
}

func (b *sitterBuilder) popScope() {
	b.scope = b.scope[:len(b.scope)-1]
}

// qualify prefixes name with the enclosing class and function names
func (b *sitterBuilder) qualify(name string) string {
	if len(b.scope) == 0 {
		return name
	}
	return strings.Join(b.scope, ".") + "." + name
}

// namedChildren returns the named children of n, skipping comments
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// hasChildOfType reports whether n has a direct child (named or anonymous)
// of the given type
func hasChildOfType(n *sitter.Node, nodeType string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == nodeType {
			return true
		}
	}
	return false
}

// firstChildOfType returns the first named child of the given type
func firstChildOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for _, child := range namedChildren(n) {
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// collectGenerators returns every function node in the tree whose body emits,
// in document order
func collectGenerators(root *Node, language Language) []*Function {
	var functions []*Function
	root.Walk(func(node *Node) bool {
		if node.Kind != NodeFunction || len(node.Children) == 0 {
			return true
		}
		body := node.Children[len(node.Children)-1]
		if body.Kind == NodeBlock && isGenerator(body) {
			functions = append(functions, &Function{
				Name:     node.Name,
				Language: language,
				Node:     node,
				Body:     body,
			})
		}
		return true
	})
	return functions
}

// compact collapses whitespace runs so multi-line source renders on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
