package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser lowers source code of one language into the shared syntax model.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	language Language
	parser   *sitter.Parser // nil for Go, which uses go/parser
}

// New creates a new Parser for the given language
func New(language Language) (*Parser, error) {
	p := &Parser{language: language}
	switch language {
	case LanguagePython:
		p.parser = sitter.NewParser()
		p.parser.SetLanguage(python.GetLanguage())
	case LanguageCSharp:
		p.parser = sitter.NewParser()
		p.parser.SetLanguage(csharp.GetLanguage())
	case LanguageGo:
	default:
		return nil, fmt.Errorf("unsupported language: %q", language)
	}
	return p, nil
}

// Language returns the language handled by the parser
func (p *Parser) Language() Language {
	return p.language
}

// ParseResult represents the lowered form of one source file
type ParseResult struct {
	Language   Language
	File       string
	Root       *Node
	Functions  []*Function
	SourceCode []byte
}

// Parse parses source code and returns the lowered tree with its generator
// functions
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	return p.ParseNamed(ctx, "", source)
}

// ParseFile parses a file from a reader
func (p *Parser) ParseFile(ctx context.Context, filename string, reader io.Reader) (*ParseResult, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return p.ParseNamed(ctx, filename, source)
}

// ParseNamed parses source code, stamping filename on every location
func (p *Parser) ParseNamed(ctx context.Context, filename string, source []byte) (*ParseResult, error) {
	var (
		root      *Node
		functions []*Function
		err       error
	)

	switch p.language {
	case LanguageGo:
		root, functions, err = buildGo(filename, source)
	default:
		root, functions, err = p.buildTreeSitter(ctx, source)
	}
	if err != nil {
		return nil, err
	}

	assignIDs(root)
	setFile(root, filename)
	for _, fn := range functions {
		fn.Location = fn.Node.Location
	}

	return &ParseResult{
		Language:   p.language,
		File:       filename,
		Root:       root,
		Functions:  functions,
		SourceCode: source,
	}, nil
}

func (p *Parser) buildTreeSitter(ctx context.Context, source []byte) (*Node, []*Function, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		return nil, nil, fmt.Errorf("syntax errors found in source code")
	}

	switch p.language {
	case LanguagePython:
		b := newPythonBuilder(source)
		root := b.build(rootNode)
		return root, b.functions, nil
	case LanguageCSharp:
		b := newCSharpBuilder(source)
		root := b.build(rootNode)
		return root, b.functions, nil
	}
	return nil, nil, fmt.Errorf("unsupported language: %q", p.language)
}

var extensionLanguages = map[string]Language{
	".py":  LanguagePython,
	".pyi": LanguagePython,
	".cs":  LanguageCSharp,
	".go":  LanguageGo,
}

// LanguageForPath returns the language of a source file from its extension
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// SupportedLanguages returns every language with a front end
func SupportedLanguages() []Language {
	return []Language{LanguagePython, LanguageCSharp, LanguageGo}
}

// ParseLanguage converts a user-facing language name into a Language
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "python", "py":
		return LanguagePython, nil
	case "csharp", "c#", "cs":
		return LanguageCSharp, nil
	case "go", "golang":
		return LanguageGo, nil
	}
	return "", fmt.Errorf("unsupported language: %q", name)
}

// Extensions returns the file extensions handled by a language
func (l Language) Extensions() []string {
	var exts []string
	for ext, lang := range extensionLanguages {
		if lang == l {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// sitterLocation converts a tree-sitter node position (0-based) into a
// 1-based Location
func sitterLocation(n *sitter.Node) Location {
	start := n.StartPoint()
	end := n.EndPoint()
	return Location{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}
