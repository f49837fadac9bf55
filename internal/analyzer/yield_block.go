package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// StatementKind distinguishes the two generator operations
type StatementKind int

const (
	// StatementEmit produces one value to the caller
	StatementEmit StatementKind = iota
	// StatementStop ends the generator's output early
	StatementStop
)

// String returns the kind name
func (k StatementKind) String() string {
	switch k {
	case StatementEmit:
		return "emit"
	case StatementStop:
		return "stop"
	}
	return fmt.Sprintf("StatementKind(%d)", int(k))
}

// Statement is one emit or stop operation of a generator function
type Statement struct {
	Kind StatementKind
	Node *parser.Node
}

// NewStatement wraps an Emit or Stop syntax node
func NewStatement(node *parser.Node) (Statement, error) {
	switch node.Kind {
	case parser.NodeEmit:
		return Statement{Kind: StatementEmit, Node: node}, nil
	case parser.NodeStop:
		return Statement{Kind: StatementStop, Node: node}, nil
	}
	return Statement{}, fmt.Errorf("node %s is neither an emit nor a stop", node)
}

// Parent returns the immediately enclosing syntax node
func (s Statement) Parent() *parser.Node {
	return s.Node.Parent
}

// Value returns the emitted expression, or nil for stops and bare emits
func (s Statement) Value() *parser.Node {
	if s.Kind != StatementEmit {
		return nil
	}
	return s.Node.Value()
}

// Text returns the emitted expression text, or the statement text when there
// is no expression
func (s Statement) Text() string {
	if value := s.Value(); value != nil && value.Text != "" {
		return value.Text
	}
	return s.Node.Text
}

// Line returns the source line of the statement
func (s Statement) Line() int {
	return s.Node.Location.StartLine
}

// YieldBlock is an ordered, non-empty run of statements sharing one parent.
// Blocks are immutable once grouping has finished.
type YieldBlock struct {
	sequenceID        int
	parent            *parser.Node
	statements        []Statement
	hasBreak          bool
	allBreak          bool
	constructionBound bool
	construction      *parser.Node
}

// SequenceID returns the creation order of the block, starting at 1
func (b *YieldBlock) SequenceID() int { return b.sequenceID }

// Parent returns the syntax node shared by all statements of the block
func (b *YieldBlock) Parent() *parser.Node { return b.parent }

// Statements returns a copy of the block's statements
func (b *YieldBlock) Statements() []Statement {
	return append([]Statement(nil), b.statements...)
}

// Len returns the number of statements
func (b *YieldBlock) Len() int { return len(b.statements) }

// HasBreak reports whether the last statement is a stop
func (b *YieldBlock) HasBreak() bool { return b.hasBreak }

// AllBreak reports whether every statement is a stop
func (b *YieldBlock) AllBreak() bool { return b.allBreak }

// ConstructionBound reports whether an emitted value was traced to an object
// construction
func (b *YieldBlock) ConstructionBound() bool { return b.constructionBound }

// Construction returns the construction expression that bound the block
func (b *YieldBlock) Construction() *parser.Node { return b.construction }

// Emissions returns the emit statements of the block
func (b *YieldBlock) Emissions() []Statement {
	var emits []Statement
	for _, stmt := range b.statements {
		if stmt.Kind == StatementEmit {
			emits = append(emits, stmt)
		}
	}
	return emits
}

// Label returns the short display name of the block
func (b *YieldBlock) Label() string {
	return fmt.Sprintf("B%d", b.sequenceID)
}

// Summary lists the block's statements, e.g. "[emit a; stop]"
func (b *YieldBlock) Summary() string {
	stmts := make([]string, 0, len(b.statements))
	for _, stmt := range b.statements {
		if stmt.Kind == StatementStop {
			stmts = append(stmts, "stop")
		} else {
			stmts = append(stmts, "emit "+stmt.Text())
		}
	}
	return "[" + strings.Join(stmts, "; ") + "]"
}

// StartLine returns the line of the first statement
func (b *YieldBlock) StartLine() int {
	return b.statements[0].Line()
}

// blockBuilder folds the statement stream of one function into blocks
type blockBuilder struct {
	fn      *parser.Function
	blocks  []*YieldBlock
	current *YieldBlock
}

func newBlockBuilder(fn *parser.Function) *blockBuilder {
	return &blockBuilder{fn: fn}
}

// add appends one statement, opening a new block when its parent differs
// from the current block's parent
func (b *blockBuilder) add(stmt Statement) error {
	if sw := b.enclosingMultiWay(stmt.Parent()); sw != nil {
		return &AnalysisError{
			Function:  b.fn.Name,
			Line:      stmt.Line(),
			Construct: fmt.Sprintf("%s at line %d", describeMultiWay(b.fn.Language), sw.Location.StartLine),
			Err:       ErrUnsupportedConstruct,
		}
	}

	if b.current == nil || b.current.parent.ID != stmt.Parent().ID {
		b.current = &YieldBlock{
			sequenceID: len(b.blocks) + 1,
			parent:     stmt.Parent(),
			allBreak:   true,
		}
		b.blocks = append(b.blocks, b.current)
	}

	block := b.current
	block.statements = append(block.statements, stmt)
	block.hasBreak = stmt.Kind == StatementStop
	block.allBreak = block.allBreak && stmt.Kind == StatementStop

	if !block.constructionBound && stmt.Kind == StatementEmit {
		if construction := b.resolveConstruction(stmt); construction != nil {
			block.constructionBound = true
			block.construction = construction
		}
	}
	return nil
}

// enclosingMultiWay returns the switch-style construct enclosing node inside
// the function, if any
func (b *blockBuilder) enclosingMultiWay(node *parser.Node) *parser.Node {
	for n := node; n != nil && n != b.fn.Node; n = n.Parent {
		if n.IsMultiWay() {
			return n
		}
	}
	return nil
}

// resolveConstruction traces the emitted value to an object construction:
// either the value itself, or the first construction inside the nearest
// declaration of the emitted identifier
func (b *blockBuilder) resolveConstruction(stmt Statement) *parser.Node {
	value := stmt.Value()
	if value == nil {
		return nil
	}

	switch value.Kind {
	case parser.NodeConstruction:
		return value
	case parser.NodeIdentifier:
		return b.findLocalConstruction(stmt.Parent(), value.Name)
	}
	return nil
}

// findLocalConstruction searches the subtree of each enclosing level, from
// the statement's parent up to and including the function body, for the
// first declaration of name. The first match decides.
func (b *blockBuilder) findLocalConstruction(from *parser.Node, name string) *parser.Node {
	for scope := from; scope != nil && scope != b.fn.Node; scope = scope.Parent {
		if decl := findDeclaration(scope, name); decl != nil {
			return firstConstruction(decl)
		}
		if scope == b.fn.Body {
			break
		}
	}
	return nil
}

// finish returns the grouped blocks in creation order
func (b *blockBuilder) finish() []*YieldBlock {
	blocks := b.blocks
	b.blocks = nil
	b.current = nil
	return blocks
}

// GroupBlocks partitions the emit and stop statements of fn into blocks.
// It fails with ErrUnsupportedConstruct when a statement sits inside
// switch-style branching.
func GroupBlocks(fn *parser.Function) ([]*YieldBlock, error) {
	builder := newBlockBuilder(fn)
	for _, node := range fn.Statements() {
		stmt, err := NewStatement(node)
		if err != nil {
			return nil, err
		}
		if err := builder.add(stmt); err != nil {
			return nil, err
		}
	}
	return builder.finish(), nil
}

func findDeclaration(scope *parser.Node, name string) *parser.Node {
	var found *parser.Node
	scope.Walk(func(n *parser.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == parser.NodeFunction && n != scope {
			return false
		}
		if n.Kind == parser.NodeDeclaration && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

func firstConstruction(decl *parser.Node) *parser.Node {
	var found *parser.Node
	decl.Walk(func(n *parser.Node) bool {
		if found != nil || n.Kind == parser.NodeFunction {
			return false
		}
		if n.Kind == parser.NodeConstruction {
			found = n
			return false
		}
		return true
	})
	return found
}

func describeMultiWay(lang parser.Language) string {
	switch lang {
	case parser.LanguagePython:
		return "match statement"
	case parser.LanguageGo:
		return "switch or select statement"
	}
	return "switch statement"
}
