// Package parser lowers generator-style functions into a small,
// language-neutral syntax tree.
//
// Python and C# sources are parsed with tree-sitter; Go sources are parsed
// with go/parser and their iterator functions discovered with the x/tools
// AST inspector. Every front end produces the same Node kinds, numbers nodes
// in pre-order so identities are stable, and reports each generator as a
// Function unit.
//
// Basic usage:
//
//	p, err := parser.New(parser.LanguagePython)
//	if err != nil {
//	    // Handle unsupported language
//	}
//	result, err := p.Parse(ctx, []byte("def gen():\n    yield 1\n"))
//	if err != nil {
//	    // Handle parsing error
//	}
//	for _, fn := range result.Functions {
//	    // fn.Statements() returns the emit and stop statements in order
//	}
package parser
