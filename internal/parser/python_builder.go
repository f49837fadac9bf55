package parser

import (
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// pythonBuilder lowers a tree-sitter Python tree
type pythonBuilder struct {
	sitterBuilder
}

func newPythonBuilder(source []byte) *pythonBuilder {
	return &pythonBuilder{sitterBuilder{source: source, language: LanguagePython}}
}

func (b *pythonBuilder) build(root *sitter.Node) *Node {
	module := b.newNode(NodeModule, root)
	b.lowerStatements(module, root)
	b.functions = collectGenerators(module, LanguagePython)
	return module
}

func (b *pythonBuilder) lowerStatements(parent *Node, n *sitter.Node) {
	for _, child := range namedChildren(n) {
		for _, lowered := range b.lowerStatement(child) {
			parent.AddChild(lowered)
		}
	}
}

// lowerBlock lowers a suite into a Block node
func (b *pythonBuilder) lowerBlock(n *sitter.Node) *Node {
	block := b.newNode(NodeBlock, n)
	if n == nil {
		return block
	}
	if n.Type() == "block" {
		b.lowerStatements(block, n)
	} else {
		for _, lowered := range b.lowerStatement(n) {
			block.AddChild(lowered)
		}
	}
	return block
}

func (b *pythonBuilder) lowerStatement(n *sitter.Node) []*Node {
	switch n.Type() {
	case "comment":
		return nil
	case "function_definition":
		return []*Node{b.lowerFunction(n)}
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			return b.lowerStatement(def)
		}
		return nil
	case "class_definition":
		return []*Node{b.lowerClass(n)}
	case "if_statement":
		return []*Node{b.lowerIf(n)}
	case "for_statement", "while_statement":
		return []*Node{b.lowerLoop(n)}
	case "try_statement":
		return []*Node{b.lowerTry(n)}
	case "with_statement":
		stmt := b.newNode(NodeStatement, n)
		stmt.Text = "with"
		stmt.AddChild(b.lowerBlock(n.ChildByFieldName("body")))
		return []*Node{stmt}
	case "match_statement":
		return []*Node{b.lowerMatch(n)}
	case "return_statement":
		nodes := b.lowerYields(n)
		stop := b.newNode(NodeStop, n)
		stop.Text = compact(b.text(n))
		return append(nodes, stop)
	}
	return b.lowerSimple(n)
}

func (b *pythonBuilder) lowerFunction(n *sitter.Node) *Node {
	name := b.text(n.ChildByFieldName("name"))
	fn := b.newNode(NodeFunction, n)
	fn.Name = b.qualify(name)

	b.pushScope(name)
	fn.AddChild(b.lowerBlock(n.ChildByFieldName("body")))
	b.popScope()
	return fn
}

func (b *pythonBuilder) lowerClass(n *sitter.Node) *Node {
	name := b.text(n.ChildByFieldName("name"))
	class := b.newNode(NodeStatement, n)
	class.Name = name
	class.Text = "class " + name

	b.pushScope(name)
	class.AddChild(b.lowerBlock(n.ChildByFieldName("body")))
	b.popScope()
	return class
}

// lowerIf lowers if/elif/else. Each elif becomes an If nested in the Else of
// the previous conditional.
func (b *pythonBuilder) lowerIf(n *sitter.Node) *Node {
	ifNode := b.newNode(NodeIf, n)
	ifNode.Text = compact(b.text(n.ChildByFieldName("condition")))
	ifNode.AddChild(b.lowerBlock(n.ChildByFieldName("consequence")))

	current := ifNode
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "elif_clause":
			elseNode := b.newNode(NodeElse, child)
			nested := b.newNode(NodeIf, child)
			nested.Text = compact(b.text(child.ChildByFieldName("condition")))
			nested.AddChild(b.lowerBlock(child.ChildByFieldName("consequence")))
			elseNode.AddChild(nested)
			current.AddChild(elseNode)
			current = nested
		case "else_clause":
			elseNode := b.newNode(NodeElse, child)
			elseNode.AddChild(b.lowerBlock(child.ChildByFieldName("body")))
			current.AddChild(elseNode)
		}
	}
	return ifNode
}

func (b *pythonBuilder) lowerLoop(n *sitter.Node) *Node {
	loop := b.newNode(NodeLoop, n)
	if n.Type() == "for_statement" {
		loop.Text = compact("for " + b.text(n.ChildByFieldName("left")) + " in " + b.text(n.ChildByFieldName("right")))
	} else {
		loop.Text = compact("while " + b.text(n.ChildByFieldName("condition")))
	}
	loop.AddChild(b.lowerBlock(n.ChildByFieldName("body")))
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		loop.AddChild(b.lowerBlock(alt.ChildByFieldName("body")))
	}
	return loop
}

func (b *pythonBuilder) lowerTry(n *sitter.Node) *Node {
	try := b.newNode(NodeTry, n)
	try.AddChild(b.lowerBlock(n.ChildByFieldName("body")))
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "except_clause", "except_group_clause", "finally_clause":
			if block := firstChildOfType(child, "block"); block != nil {
				try.AddChild(b.lowerBlock(block))
			}
		case "else_clause":
			try.AddChild(b.lowerBlock(child.ChildByFieldName("body")))
		}
	}
	return try
}

func (b *pythonBuilder) lowerMatch(n *sitter.Node) *Node {
	match := b.newNode(NodeSwitch, n)
	match.Text = compact(b.text(n.ChildByFieldName("subject")))
	clauses := namedChildren(n.ChildByFieldName("body"))
	if len(clauses) == 0 {
		clauses = namedChildren(n)
	}
	for _, clause := range clauses {
		if clause.Type() != "case_clause" {
			continue
		}
		c := b.newNode(NodeCase, clause)
		c.AddChild(b.lowerBlock(clause.ChildByFieldName("consequence")))
		match.AddChild(c)
	}
	return match
}

// lowerSimple lowers a simple statement: the yields it contains in evaluation
// order, then its declarations or an inert statement node
func (b *pythonBuilder) lowerSimple(n *sitter.Node) []*Node {
	nodes := b.lowerYields(n)

	var expr *sitter.Node
	if n.Type() == "expression_statement" && n.NamedChildCount() == 1 {
		expr = n.NamedChild(0)
	}
	if expr != nil && expr.Type() == "yield" {
		return nodes
	}
	if expr != nil && expr.Type() == "assignment" {
		if decls := b.lowerAssignment(expr); len(decls) > 0 {
			return append(nodes, decls...)
		}
	}
	return append(nodes, b.statement(n))
}

func (b *pythonBuilder) lowerAssignment(n *sitter.Node) []*Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil {
		return nil
	}

	var names []*sitter.Node
	switch left.Type() {
	case "identifier":
		names = append(names, left)
	case "pattern_list", "tuple_pattern", "list_pattern":
		for _, child := range namedChildren(left) {
			if child.Type() == "identifier" {
				names = append(names, child)
			}
		}
	}

	decls := make([]*Node, 0, len(names))
	for _, name := range names {
		decl := b.newNode(NodeDeclaration, n)
		decl.Name = b.text(name)
		decl.Text = compact(b.text(n))
		if right != nil {
			decl.AddChild(b.lowerExpr(right))
		}
		decls = append(decls, decl)
	}
	return decls
}

// lowerYields returns an Emit node for every yield expression inside n,
// without entering nested functions, classes or lambdas
func (b *pythonBuilder) lowerYields(n *sitter.Node) []*Node {
	var emits []*Node
	var visit func(*sitter.Node)
	visit = func(node *sitter.Node) {
		switch node.Type() {
		case "function_definition", "class_definition", "lambda":
			return
		case "yield":
			emits = append(emits, b.lowerYield(node))
			return
		}
		for _, child := range namedChildren(node) {
			visit(child)
		}
	}
	visit(n)
	return emits
}

func (b *pythonBuilder) lowerYield(n *sitter.Node) *Node {
	emit := b.newNode(NodeEmit, n)
	emit.Text = compact(b.text(n))
	if hasChildOfType(n, "from") {
		emit.Name = "from"
	}
	if children := namedChildren(n); len(children) > 0 {
		emit.AddChild(b.lowerExpr(children[0]))
	}
	return emit
}

func (b *pythonBuilder) lowerExpr(n *sitter.Node) *Node {
	switch n.Type() {
	case "identifier":
		ident := b.newNode(NodeIdentifier, n)
		ident.Name = b.text(n)
		ident.Text = ident.Name
		return ident
	case "parenthesized_expression":
		if children := namedChildren(n); len(children) == 1 {
			return b.lowerExpr(children[0])
		}
	case "call":
		if callee, ok := b.constructedType(n); ok {
			construction := b.newNode(NodeConstruction, n)
			construction.Name = callee
			construction.Text = compact(b.text(n))
			for _, nested := range b.constructions(n.ChildByFieldName("arguments")) {
				construction.AddChild(nested)
			}
			return construction
		}
	}

	expr := b.newNode(NodeExpression, n)
	expr.Text = compact(b.text(n))
	for _, nested := range b.constructions(n) {
		expr.AddChild(nested)
	}
	return expr
}

// constructions returns the outermost construction expressions below n
func (b *pythonBuilder) constructions(n *sitter.Node) []*Node {
	var found []*Node
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "lambda":
			continue
		case "call":
			if _, ok := b.constructedType(child); ok {
				found = append(found, b.lowerExpr(child))
				continue
			}
		}
		found = append(found, b.constructions(child)...)
	}
	return found
}

// constructedType reports whether a call instantiates a class, judged by a
// capitalised callee name (Point(...), models.User(...))
func (b *pythonBuilder) constructedType(call *sitter.Node) (string, bool) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return "", false
	}

	var last string
	switch callee.Type() {
	case "identifier":
		last = b.text(callee)
	case "attribute":
		last = b.text(callee.ChildByFieldName("attribute"))
	default:
		return "", false
	}

	for _, r := range last {
		return b.text(callee), unicode.IsUpper(r)
	}
	return "", false
}
