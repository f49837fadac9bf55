package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// csharpBuilder lowers a tree-sitter C# tree
type csharpBuilder struct {
	sitterBuilder
}

func newCSharpBuilder(source []byte) *csharpBuilder {
	return &csharpBuilder{sitterBuilder{source: source, language: LanguageCSharp}}
}

func (b *csharpBuilder) build(root *sitter.Node) *Node {
	module := b.newNode(NodeModule, root)
	b.lowerMembers(module, root)
	b.functions = collectGenerators(module, LanguageCSharp)
	return module
}

// lowerMembers lowers the type and member declarations below n
func (b *csharpBuilder) lowerMembers(parent *Node, n *sitter.Node) {
	for _, child := range namedChildren(n) {
		parent.AddChild(b.lowerMember(child))
	}
}

func (b *csharpBuilder) lowerMember(n *sitter.Node) *Node {
	switch n.Type() {
	case "namespace_declaration", "file_scoped_namespace_declaration",
		"class_declaration", "struct_declaration", "interface_declaration",
		"record_declaration", "record_struct_declaration":
		name := b.text(n.ChildByFieldName("name"))
		container := b.newNode(NodeStatement, n)
		container.Name = name
		container.Text = strings.TrimSuffix(n.Type(), "_declaration") + " " + name

		b.pushScope(name)
		if body := n.ChildByFieldName("body"); body != nil {
			b.lowerMembers(container, body)
		} else {
			b.lowerMembers(container, n)
		}
		b.popScope()
		return container
	case "method_declaration", "constructor_declaration", "destructor_declaration",
		"operator_declaration", "conversion_operator_declaration", "local_function_statement":
		return b.lowerFunction(n, b.text(n.ChildByFieldName("name")))
	case "property_declaration", "indexer_declaration":
		return b.lowerProperty(n)
	case "global_statement":
		container := b.newNode(NodeStatement, n)
		for _, child := range namedChildren(n) {
			for _, lowered := range b.lowerStatement(child) {
				container.AddChild(lowered)
			}
		}
		return container
	case "declaration_list":
		container := b.newNode(NodeStatement, n)
		b.lowerMembers(container, n)
		return container
	}
	return nil
}

func (b *csharpBuilder) lowerProperty(n *sitter.Node) *Node {
	name := b.text(n.ChildByFieldName("name"))
	if n.Type() == "indexer_declaration" {
		name = "this[]"
	}
	property := b.newNode(NodeStatement, n)
	property.Name = name

	accessors := n.ChildByFieldName("accessors")
	if accessors == nil {
		accessors = firstChildOfType(n, "accessor_list")
	}
	b.pushScope(name)
	for _, accessor := range namedChildren(accessors) {
		if accessor.Type() != "accessor_declaration" {
			continue
		}
		property.AddChild(b.lowerFunction(accessor, accessorKeyword(accessor)))
	}
	b.popScope()
	return property
}

// accessorKeyword returns get, set, init, add or remove
func accessorKeyword(accessor *sitter.Node) string {
	for i := 0; i < int(accessor.ChildCount()); i++ {
		switch t := accessor.Child(i).Type(); t {
		case "get", "set", "init", "add", "remove":
			return t
		}
	}
	return "get"
}

func (b *csharpBuilder) lowerFunction(n *sitter.Node, name string) *Node {
	fn := b.newNode(NodeFunction, n)
	fn.Name = b.qualify(name)

	body := n.ChildByFieldName("body")
	if body == nil {
		body = firstChildOfType(n, "block")
	}
	if body == nil || body.Type() != "block" {
		// abstract, extern or expression-bodied members cannot iterate
		return fn
	}

	b.pushScope(name)
	fn.AddChild(b.lowerBlock(body))
	b.popScope()
	return fn
}

func (b *csharpBuilder) lowerBlock(n *sitter.Node) *Node {
	block := b.newNode(NodeBlock, n)
	for _, child := range namedChildren(n) {
		for _, lowered := range b.lowerStatement(child) {
			block.AddChild(lowered)
		}
	}
	return block
}

// lowerArm lowers an embedded statement into a Block, wrapping statements
// written without braces
func (b *csharpBuilder) lowerArm(n *sitter.Node) *Node {
	if n == nil {
		return NewNode(NodeBlock)
	}
	if n.Type() == "block" {
		return b.lowerBlock(n)
	}
	block := b.newNode(NodeBlock, n)
	for _, lowered := range b.lowerStatement(n) {
		block.AddChild(lowered)
	}
	return block
}

func (b *csharpBuilder) lowerStatement(n *sitter.Node) []*Node {
	switch n.Type() {
	case "block":
		return []*Node{b.lowerBlock(n)}
	case "if_statement":
		return []*Node{b.lowerIf(n)}
	case "yield_statement":
		return []*Node{b.lowerYield(n)}
	case "switch_statement":
		return []*Node{b.lowerSwitch(n)}
	case "for_statement", "for_each_statement", "foreach_statement", "while_statement", "do_statement":
		loop := b.newNode(NodeLoop, n)
		loop.Text = strings.TrimSuffix(n.Type(), "_statement")
		loop.AddChild(b.lowerArm(n.ChildByFieldName("body")))
		return []*Node{loop}
	case "try_statement":
		return []*Node{b.lowerTry(n)}
	case "local_declaration_statement":
		return b.lowerDeclarations(n)
	case "local_function_statement":
		return []*Node{b.lowerFunction(n, b.text(n.ChildByFieldName("name")))}
	case "expression_statement", "return_statement", "throw_statement",
		"break_statement", "continue_statement", "goto_statement", "empty_statement":
		return []*Node{b.statement(n)}
	}
	return []*Node{b.lowerContainer(n)}
}

// lowerContainer lowers statements such as using, lock, fixed or labeled
// statements: their declarations and embedded statements become children
func (b *csharpBuilder) lowerContainer(n *sitter.Node) *Node {
	container := b.statement(n)
	container.Text = strings.TrimSuffix(n.Type(), "_statement")
	for _, child := range namedChildren(n) {
		switch {
		case child.Type() == "variable_declaration":
			for _, decl := range b.lowerDeclarations(child) {
				container.AddChild(decl)
			}
		case child.Type() == "block" || strings.HasSuffix(child.Type(), "_statement"):
			for _, lowered := range b.lowerStatement(child) {
				container.AddChild(lowered)
			}
		}
	}
	return container
}

// lowerIf lowers if/else; an else-if becomes an If nested in the Else node
func (b *csharpBuilder) lowerIf(n *sitter.Node) *Node {
	ifNode := b.newNode(NodeIf, n)
	ifNode.Text = compact(b.text(n.ChildByFieldName("condition")))
	ifNode.AddChild(b.lowerArm(n.ChildByFieldName("consequence")))

	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return ifNode
	}
	if alt.Type() == "else_clause" {
		// older grammars wrap the alternative in an else_clause
		if children := namedChildren(alt); len(children) > 0 {
			alt = children[0]
		}
	}

	elseNode := b.newNode(NodeElse, alt)
	if alt.Type() == "if_statement" {
		elseNode.AddChild(b.lowerIf(alt))
	} else {
		elseNode.AddChild(b.lowerArm(alt))
	}
	ifNode.AddChild(elseNode)
	return ifNode
}

func (b *csharpBuilder) lowerYield(n *sitter.Node) *Node {
	text := compact(b.text(n))
	if hasChildOfType(n, "break") {
		stop := b.newNode(NodeStop, n)
		stop.Text = text
		return stop
	}

	emit := b.newNode(NodeEmit, n)
	emit.Text = text
	if children := namedChildren(n); len(children) > 0 {
		emit.AddChild(b.lowerExpr(children[0]))
	}
	return emit
}

func (b *csharpBuilder) lowerSwitch(n *sitter.Node) *Node {
	sw := b.newNode(NodeSwitch, n)
	sw.Text = compact(b.text(n.ChildByFieldName("value")))

	body := n.ChildByFieldName("body")
	if body == nil {
		body = firstChildOfType(n, "switch_body")
	}
	for _, section := range namedChildren(body) {
		if section.Type() != "switch_section" {
			continue
		}
		c := b.newNode(NodeCase, section)
		block := b.newNode(NodeBlock, section)
		for _, child := range namedChildren(section) {
			if child.Type() == "block" || strings.HasSuffix(child.Type(), "_statement") {
				for _, lowered := range b.lowerStatement(child) {
					block.AddChild(lowered)
				}
			}
		}
		c.AddChild(block)
		sw.AddChild(c)
	}
	return sw
}

func (b *csharpBuilder) lowerTry(n *sitter.Node) *Node {
	try := b.newNode(NodeTry, n)
	try.AddChild(b.lowerArm(n.ChildByFieldName("body")))
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "catch_clause":
			try.AddChild(b.lowerArm(child.ChildByFieldName("body")))
		case "finally_clause":
			try.AddChild(b.lowerArm(firstChildOfType(child, "block")))
		}
	}
	return try
}

// lowerDeclarations returns one Declaration per variable declarator below n
func (b *csharpBuilder) lowerDeclarations(n *sitter.Node) []*Node {
	var decls []*Node
	var visit func(*sitter.Node)
	visit = func(node *sitter.Node) {
		for _, child := range namedChildren(node) {
			switch child.Type() {
			case "variable_declaration":
				visit(child)
			case "variable_declarator":
				decls = append(decls, b.lowerDeclarator(child))
			}
		}
	}
	visit(n)
	return decls
}

func (b *csharpBuilder) lowerDeclarator(n *sitter.Node) *Node {
	decl := b.newNode(NodeDeclaration, n)
	decl.Text = compact(b.text(n))

	name := n.ChildByFieldName("name")
	for _, child := range namedChildren(n) {
		switch {
		case name == nil && child.Type() == "identifier":
			name = child
		case name != nil && child.StartByte() == name.StartByte() && child.Type() == name.Type():
		case child.Type() == "equals_value_clause":
			for _, value := range namedChildren(child) {
				decl.AddChild(b.lowerExpr(value))
			}
		case child.Type() == "bracketed_argument_list":
		default:
			decl.AddChild(b.lowerExpr(child))
		}
	}
	decl.Name = b.text(name)
	return decl
}

var csharpConstructions = map[string]bool{
	"object_creation_expression":           true,
	"implicit_object_creation_expression":  true,
	"anonymous_object_creation_expression": true,
}

func (b *csharpBuilder) lowerExpr(n *sitter.Node) *Node {
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
	}

	if csharpConstructions[n.Type()] {
		construction := b.newNode(NodeConstruction, n)
		construction.Text = compact(b.text(n))
		switch n.Type() {
		case "object_creation_expression":
			construction.Name = compact(b.text(n.ChildByFieldName("type")))
		case "implicit_object_creation_expression":
			construction.Name = "new()"
		default:
			construction.Name = "new {}"
		}
		for _, nested := range b.constructions(n) {
			construction.AddChild(nested)
		}
		return construction
	}

	expr := b.newNode(NodeExpression, n)
	expr.Text = compact(b.text(n))
	for _, nested := range b.constructions(n) {
		expr.AddChild(nested)
	}
	return expr
}

// constructions returns the outermost object creations below n, skipping
// lambdas and anonymous methods
func (b *csharpBuilder) constructions(n *sitter.Node) []*Node {
	var found []*Node
	for _, child := range namedChildren(n) {
		switch {
		case child.Type() == "lambda_expression" || child.Type() == "anonymous_method_expression":
			continue
		case csharpConstructions[child.Type()]:
			found = append(found, b.lowerExpr(child))
		default:
			found = append(found, b.constructions(child)...)
		}
	}
	return found
}
