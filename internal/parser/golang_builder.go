package parser

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/inspector"
)

// goBuilder lowers a Go file. Iterator functions (the iter.Seq shape, or any
// function with a func(...) bool parameter named yield) are the units; calls
// of the yield parameter are emits and return statements are stops.
type goBuilder struct {
	fset   *token.FileSet
	source []byte

	funcs    map[ast.Node]*Node
	yields   []string // yield parameter names of the enclosing functions
	names    []string // enclosing function names
	literals []int    // function literal counters per enclosing function
}

func buildGo(filename string, source []byte) (*Node, []*Function, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filename, source, goparser.SkipObjectResolution)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse source: %w", err)
	}

	b := &goBuilder{
		fset:   fset,
		source: source,
		funcs:  make(map[ast.Node]*Node),
	}
	root := b.lowerFile(file)
	return root, b.discover(file), nil
}

// discover returns the iterator functions of the file in document order
func (b *goBuilder) discover(file *ast.File) []*Function {
	var functions []*Function

	insp := inspector.New([]*ast.File{file})
	filter := []ast.Node{(*ast.FuncDecl)(nil), (*ast.FuncLit)(nil)}
	insp.Preorder(filter, func(n ast.Node) {
		var typ *ast.FuncType
		switch fn := n.(type) {
		case *ast.FuncDecl:
			typ = fn.Type
		case *ast.FuncLit:
			typ = fn.Type
		}
		if yieldParam(typ) == "" {
			return
		}

		node := b.funcs[n]
		if node == nil || len(node.Children) == 0 {
			return
		}
		body := node.Children[0]
		if !isGenerator(body) {
			return
		}
		functions = append(functions, &Function{
			Name:     node.Name,
			Language: LanguageGo,
			Node:     node,
			Body:     body,
		})
	})
	return functions
}

// yieldParam returns the name of the yield parameter of a function type, or
// an empty string when the function is not an iterator
func yieldParam(typ *ast.FuncType) string {
	if typ == nil || typ.Params == nil {
		return ""
	}

	params := typ.Params.List
	seqShape := len(params) == 1 && len(params[0].Names) <= 1 &&
		(typ.Results == nil || len(typ.Results.List) == 0)

	for _, field := range params {
		if !isBoolFunc(field.Type) {
			continue
		}
		for _, name := range field.Names {
			if name.Name == "yield" || (seqShape && name.Name != "_") {
				return name.Name
			}
		}
	}
	return ""
}

func isBoolFunc(expr ast.Expr) bool {
	ft, ok := expr.(*ast.FuncType)
	if !ok || ft.Results == nil || len(ft.Results.List) != 1 {
		return false
	}
	result := ft.Results.List[0]
	ident, ok := result.Type.(*ast.Ident)
	return ok && ident.Name == "bool" && len(result.Names) <= 1
}

func (b *goBuilder) newNode(kind NodeKind, n ast.Node) *Node {
	node := NewNode(kind)
	if n != nil {
		node.Location = b.location(n)
	}
	return node
}

// location converts go/token positions into a Location with 0-based columns
func (b *goBuilder) location(n ast.Node) Location {
	start := b.fset.Position(n.Pos())
	end := b.fset.Position(n.End())
	return Location{
		StartLine: start.Line,
		StartCol:  start.Column - 1,
		EndLine:   end.Line,
		EndCol:    end.Column - 1,
	}
}

func (b *goBuilder) text(n ast.Node) string {
	if n == nil {
		return ""
	}
	start := b.fset.Position(n.Pos()).Offset
	end := b.fset.Position(n.End()).Offset
	if start < 0 || end > len(b.source) || start > end {
		return ""
	}
	return compact(string(b.source[start:end]))
}

func (b *goBuilder) statement(n ast.Node) *Node {
	node := b.newNode(NodeStatement, n)
	node.Text = b.text(n)
	return node
}

func (b *goBuilder) lowerFile(file *ast.File) *Node {
	module := b.newNode(NodeModule, file)
	module.Name = file.Name.Name

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			module.AddChild(b.lowerFunc(d, funcDeclName(d), d.Type, d.Body))
		case *ast.GenDecl:
			for _, lowered := range b.lowerGenDecl(d) {
				module.AddChild(lowered)
			}
		}
	}
	return module
}

func funcDeclName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return d.Name.Name
	}
	recv := d.Recv.List[0].Type
	for {
		switch t := recv.(type) {
		case *ast.StarExpr:
			recv = t.X
			continue
		case *ast.IndexExpr:
			recv = t.X
			continue
		case *ast.IndexListExpr:
			recv = t.X
			continue
		case *ast.Ident:
			return t.Name + "." + d.Name.Name
		}
		return d.Name.Name
	}
}

func (b *goBuilder) lowerFunc(n ast.Node, name string, typ *ast.FuncType, body *ast.BlockStmt) *Node {
	fn := b.newNode(NodeFunction, n)
	fn.Name = name
	b.funcs[n] = fn
	if body == nil {
		return fn
	}

	yield := yieldParam(typ)
	if yield == "" && len(b.yields) > 0 {
		yield = b.yields[len(b.yields)-1]
	}
	b.yields = append(b.yields, yield)
	b.names = append(b.names, name)
	b.literals = append(b.literals, 0)

	fn.AddChild(b.lowerBlock(body))

	b.yields = b.yields[:len(b.yields)-1]
	b.names = b.names[:len(b.names)-1]
	b.literals = b.literals[:len(b.literals)-1]
	return fn
}

// literalName names a function literal after its enclosing function the way
// the runtime does (Outer.func1, Outer.func2, ...)
func (b *goBuilder) literalName() string {
	if len(b.names) == 0 {
		return "func"
	}
	top := len(b.literals) - 1
	b.literals[top]++
	return fmt.Sprintf("%s.func%d", b.names[top], b.literals[top])
}

func (b *goBuilder) currentYield() string {
	if len(b.yields) == 0 {
		return ""
	}
	return b.yields[len(b.yields)-1]
}

func (b *goBuilder) lowerBlock(block *ast.BlockStmt) *Node {
	node := b.newNode(NodeBlock, block)
	if block == nil {
		return node
	}
	for _, stmt := range block.List {
		for _, lowered := range b.lowerStmt(stmt) {
			node.AddChild(lowered)
		}
	}
	return node
}

// lowerStmts lowers a statement list (case clause bodies) into one Block
func (b *goBuilder) lowerStmts(n ast.Node, stmts []ast.Stmt) *Node {
	node := b.newNode(NodeBlock, n)
	for _, stmt := range stmts {
		for _, lowered := range b.lowerStmt(stmt) {
			node.AddChild(lowered)
		}
	}
	return node
}

func (b *goBuilder) lowerStmt(stmt ast.Stmt) []*Node {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return []*Node{b.lowerBlock(s)}
	case *ast.IfStmt:
		return b.lowerIf(s)
	case *ast.ForStmt:
		nodes := b.lowerInit(s.Init)
		loop := b.newNode(NodeLoop, s)
		loop.Text = "for " + b.text(s.Cond)
		loop.AddChild(b.lowerBlock(s.Body))
		return append(nodes, loop)
	case *ast.RangeStmt:
		nodes := b.emits(s.X)
		loop := b.newNode(NodeLoop, s)
		loop.Text = "range " + b.text(s.X)
		loop.AddChild(b.lowerBlock(s.Body))
		return append(nodes, loop)
	case *ast.SwitchStmt:
		nodes := b.lowerInit(s.Init)
		return append(nodes, b.lowerSwitch(s, b.text(s.Tag), s.Body))
	case *ast.TypeSwitchStmt:
		nodes := b.lowerInit(s.Init)
		return append(nodes, b.lowerSwitch(s, b.text(s.Assign), s.Body))
	case *ast.SelectStmt:
		return []*Node{b.lowerSwitch(s, "select", s.Body)}
	case *ast.ReturnStmt:
		var nodes []*Node
		for _, result := range s.Results {
			nodes = append(nodes, b.emits(result)...)
		}
		if inner := b.innerAll(s.Results); len(inner) > 0 {
			// returned function literals are lowered into a sibling statement
			stmt := b.statement(s)
			for _, n := range inner {
				stmt.AddChild(n)
			}
			nodes = append(nodes, stmt)
		}
		stop := b.newNode(NodeStop, s)
		stop.Text = b.text(s)
		return append(nodes, stop)
	case *ast.ExprStmt:
		nodes := b.emits(s.X)
		if b.isYieldCall(s.X) {
			return nodes
		}
		return append(nodes, b.exprStatement(s, s.X))
	case *ast.AssignStmt:
		return b.lowerAssign(s)
	case *ast.DeclStmt:
		if gen, ok := s.Decl.(*ast.GenDecl); ok {
			return b.lowerGenDecl(gen)
		}
	case *ast.LabeledStmt:
		return b.lowerStmt(s.Stmt)
	case *ast.DeferStmt:
		return []*Node{b.exprStatement(s, s.Call)}
	case *ast.GoStmt:
		return []*Node{b.exprStatement(s, s.Call)}
	}
	return []*Node{b.statement(stmt)}
}

// lowerInit lowers the init statement of if, for and switch statements
func (b *goBuilder) lowerInit(init ast.Stmt) []*Node {
	if init == nil {
		return nil
	}
	return b.lowerStmt(init)
}

// lowerIf lowers an if statement. The `if !yield(v) { return }` idiom is a
// single emit; else-if chains become an If nested in the Else node.
func (b *goBuilder) lowerIf(s *ast.IfStmt) []*Node {
	if emit := b.yieldGuard(s); emit != nil {
		return []*Node{emit}
	}

	nodes := b.lowerInit(s.Init)
	nodes = append(nodes, b.emits(s.Cond)...)

	ifNode := b.newNode(NodeIf, s)
	ifNode.Text = b.text(s.Cond)
	ifNode.AddChild(b.lowerBlock(s.Body))

	switch els := s.Else.(type) {
	case *ast.IfStmt:
		elseNode := b.newNode(NodeElse, els)
		for _, lowered := range b.lowerIf(els) {
			elseNode.AddChild(lowered)
		}
		ifNode.AddChild(elseNode)
	case *ast.BlockStmt:
		elseNode := b.newNode(NodeElse, els)
		elseNode.AddChild(b.lowerBlock(els))
		ifNode.AddChild(elseNode)
	}
	return append(nodes, ifNode)
}

// yieldGuard recognises `if !yield(v) { return }` and returns its emit
func (b *goBuilder) yieldGuard(s *ast.IfStmt) *Node {
	if s.Init != nil || s.Else != nil || len(s.Body.List) != 1 {
		return nil
	}
	ret, ok := s.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 0 {
		return nil
	}
	not, ok := s.Cond.(*ast.UnaryExpr)
	if !ok || not.Op != token.NOT || !b.isYieldCall(not.X) {
		return nil
	}

	emit := b.emit(not.X.(*ast.CallExpr))
	emit.Location = b.location(s)
	return emit
}

func (b *goBuilder) lowerSwitch(n ast.Node, text string, body *ast.BlockStmt) *Node {
	sw := b.newNode(NodeSwitch, n)
	sw.Text = text
	for _, clause := range body.List {
		c := b.newNode(NodeCase, clause)
		switch cl := clause.(type) {
		case *ast.CaseClause:
			c.AddChild(b.lowerStmts(cl, cl.Body))
		case *ast.CommClause:
			c.AddChild(b.lowerStmts(cl, cl.Body))
		}
		sw.AddChild(c)
	}
	return sw
}

func (b *goBuilder) lowerAssign(s *ast.AssignStmt) []*Node {
	var nodes []*Node
	for _, rhs := range s.Rhs {
		nodes = append(nodes, b.emits(rhs)...)
	}

	if s.Tok != token.DEFINE {
		return append(nodes, b.exprStatement(s, s.Rhs...))
	}
	for i, lhs := range s.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok || ident.Name == "_" {
			continue
		}
		decl := b.newNode(NodeDeclaration, s)
		decl.Name = ident.Name
		decl.Text = b.text(s)
		if len(s.Rhs) == len(s.Lhs) {
			decl.AddChild(b.lowerExpr(s.Rhs[i]))
		} else if len(s.Rhs) == 1 {
			decl.AddChild(b.lowerExpr(s.Rhs[0]))
		}
		nodes = append(nodes, decl)
	}
	return nodes
}

func (b *goBuilder) lowerGenDecl(d *ast.GenDecl) []*Node {
	if d.Tok != token.VAR && d.Tok != token.CONST {
		return []*Node{b.statement(d)}
	}

	var nodes []*Node
	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, value := range vs.Values {
			nodes = append(nodes, b.emits(value)...)
		}
		for i, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			decl := b.newNode(NodeDeclaration, vs)
			decl.Name = name.Name
			decl.Text = b.text(vs)
			if i < len(vs.Values) {
				if lit, ok := vs.Values[i].(*ast.FuncLit); ok && len(b.names) == 0 {
					// package-level iterator variables are named after the variable
					decl.AddChild(b.lowerFunc(lit, name.Name, lit.Type, lit.Body))
				} else {
					decl.AddChild(b.lowerExpr(vs.Values[i]))
				}
			}
			nodes = append(nodes, decl)
		}
	}
	return nodes
}

// exprStatement creates an inert statement node keeping function literals
// and constructions found in exprs as children
func (b *goBuilder) exprStatement(n ast.Node, exprs ...ast.Expr) *Node {
	stmt := b.statement(n)
	for _, inner := range b.innerAll(exprs) {
		stmt.AddChild(inner)
	}
	return stmt
}

// innerAll returns the function literals and constructions of exprs,
// including the expressions themselves
func (b *goBuilder) innerAll(exprs []ast.Expr) []*Node {
	var found []*Node
	for _, expr := range exprs {
		if _, isLit := expr.(*ast.FuncLit); isLit {
			found = append(found, b.lowerExpr(expr))
			continue
		}
		if _, _, ok := b.constructedType(expr); ok {
			found = append(found, b.lowerExpr(expr))
			continue
		}
		found = append(found, b.nested(expr)...)
	}
	return found
}

func (b *goBuilder) isYieldCall(expr ast.Expr) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	ident, ok := call.Fun.(*ast.Ident)
	yield := b.currentYield()
	return ok && yield != "" && ident.Name == yield
}

// emits returns an Emit node for every yield call in expr in evaluation
// order, without entering function literals
func (b *goBuilder) emits(expr ast.Expr) []*Node {
	if expr == nil || b.currentYield() == "" {
		return nil
	}
	var nodes []*Node
	ast.Inspect(expr, func(n ast.Node) bool {
		switch e := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.CallExpr:
			if b.isYieldCall(e) {
				for _, arg := range e.Args {
					nodes = append(nodes, b.emits(arg)...)
				}
				nodes = append(nodes, b.emit(e))
				return false
			}
		}
		return true
	})
	return nodes
}

func (b *goBuilder) emit(call *ast.CallExpr) *Node {
	emit := b.newNode(NodeEmit, call)
	emit.Text = b.text(call)
	switch len(call.Args) {
	case 0:
	case 1:
		emit.AddChild(b.lowerExpr(call.Args[0]))
	default:
		parts := make([]string, 0, len(call.Args))
		value := b.newNode(NodeExpression, call)
		for _, arg := range call.Args {
			parts = append(parts, b.text(arg))
			value.AddChild(b.lowerExpr(arg))
		}
		value.Text = strings.Join(parts, ", ")
		emit.AddChild(value)
	}
	return emit
}

func (b *goBuilder) lowerExpr(expr ast.Expr) *Node {
	switch e := expr.(type) {
	case *ast.Ident:
		ident := b.newNode(NodeIdentifier, e)
		ident.Name = e.Name
		ident.Text = e.Name
		return ident
	case *ast.ParenExpr:
		return b.lowerExpr(e.X)
	case *ast.FuncLit:
		return b.lowerFunc(e, b.literalName(), e.Type, e.Body)
	}

	if typeName, elts, ok := b.constructedType(expr); ok {
		construction := b.newNode(NodeConstruction, expr)
		construction.Name = typeName
		construction.Text = b.text(expr)
		for _, elt := range elts {
			for _, nested := range b.nested(elt) {
				construction.AddChild(nested)
			}
		}
		return construction
	}

	node := b.newNode(NodeExpression, expr)
	node.Text = b.text(expr)
	for _, nested := range b.nested(expr) {
		node.AddChild(nested)
	}
	return node
}

// nested returns the outermost constructions and function literals in expr.
// When expr itself is one of them it is not included, only its contents.
func (b *goBuilder) nested(expr ast.Expr) []*Node {
	var found []*Node
	ast.Inspect(expr, func(n ast.Node) bool {
		e, ok := n.(ast.Expr)
		if !ok || e == expr {
			return true
		}
		if _, isLit := e.(*ast.FuncLit); isLit {
			found = append(found, b.lowerExpr(e))
			return false
		}
		if _, _, ok := b.constructedType(e); ok {
			found = append(found, b.lowerExpr(e))
			return false
		}
		return true
	})
	return found
}

// constructedType reports whether expr allocates a value: T{...}, &T{...}
// or new(T). It returns the type and the element expressions.
func (b *goBuilder) constructedType(expr ast.Expr) (string, []ast.Expr, bool) {
	switch e := expr.(type) {
	case *ast.CompositeLit:
		return b.text(e.Type), e.Elts, true
	case *ast.UnaryExpr:
		if lit, ok := e.X.(*ast.CompositeLit); ok && e.Op == token.AND {
			return b.text(lit.Type), lit.Elts, true
		}
	case *ast.CallExpr:
		if ident, ok := e.Fun.(*ast.Ident); ok && ident.Name == "new" && len(e.Args) == 1 {
			return b.text(e.Args[0]), nil, true
		}
	}
	return "", nil, false
}
