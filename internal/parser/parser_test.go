package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, lang Language, source string) *ParseResult {
	t.Helper()
	p, err := New(lang)
	require.NoError(t, err)
	result, err := p.ParseNamed(context.Background(), "test"+lang.Extensions()[0], []byte(source))
	require.NoError(t, err)
	return result
}

func functionNamed(t *testing.T, result *ParseResult, name string) *Function {
	t.Helper()
	for _, fn := range result.Functions {
		if fn.Name == name {
			return fn
		}
	}
	names := make([]string, 0, len(result.Functions))
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	t.Fatalf("function %q not found, have %v", name, names)
	return nil
}

func statementKinds(fn *Function) []NodeKind {
	var kinds []NodeKind
	for _, stmt := range fn.Statements() {
		kinds = append(kinds, stmt.Kind)
	}
	return kinds
}

func TestNew(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		p, err := New(lang)
		require.NoError(t, err, lang)
		assert.Equal(t, lang, p.Language())
	}

	_, err := New("cobol")
	assert.Error(t, err)
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"gen.py", LanguagePython, true},
		{"stubs/gen.pyi", LanguagePython, true},
		{"Iterators.CS", LanguageCSharp, true},
		{"pkg/seq.go", LanguageGo, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	for input, want := range map[string]Language{
		"python": LanguagePython,
		"Py":     LanguagePython,
		"c#":     LanguageCSharp,
		"csharp": LanguageCSharp,
		"golang": LanguageGo,
		" go ":   LanguageGo,
	} {
		got, err := ParseLanguage(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLanguage("rust")
	assert.Error(t, err)
}

func TestParseSyntaxErrors(t *testing.T) {
	sources := map[Language]string{
		LanguagePython: "def broken(:\n    yield 1\n",
		LanguageCSharp: "class C { IEnumerable<int> M() { yield return ; } ",
		LanguageGo:     "package p\nfunc f( {",
	}

	for lang, source := range sources {
		t.Run(string(lang), func(t *testing.T) {
			p, err := New(lang)
			require.NoError(t, err)
			_, err = p.Parse(context.Background(), []byte(source))
			assert.Error(t, err)
		})
	}
}

func TestParseFileStampsLocations(t *testing.T) {
	p, err := New(LanguagePython)
	require.NoError(t, err)

	result, err := p.ParseFile(context.Background(), "pkg/gen.py", strings.NewReader("def gen():\n    yield 1\n"))
	require.NoError(t, err)
	require.Len(t, result.Functions, 1)

	fn := result.Functions[0]
	assert.Equal(t, "pkg/gen.py", fn.Location.File)
	assert.Equal(t, 1, fn.Location.StartLine)

	stmts := fn.Statements()
	require.Len(t, stmts, 1)
	assert.Equal(t, "pkg/gen.py:2:4", stmts[0].Location.String())
}

func TestNodeIDsFollowDocumentOrder(t *testing.T) {
	result := parseSource(t, LanguagePython, `
def gen(c):
    yield 1
    if c:
        yield 2
    yield 3
`)

	prev := NoNode
	result.Root.Walk(func(n *Node) bool {
		assert.Greater(t, n.ID, prev)
		prev = n.ID
		for _, child := range n.Children {
			assert.Same(t, n, child.Parent)
		}
		return true
	})

	// parsing again yields the same identities
	again := parseSource(t, LanguagePython, `
def gen(c):
    yield 1
    if c:
        yield 2
    yield 3
`)
	first := result.Functions[0].Statements()
	second := again.Functions[0].Statements()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Parent.ID, second[i].Parent.ID)
	}
}

func TestPrinterVisitor(t *testing.T) {
	result := parseSource(t, LanguagePython, "def gen():\n    yield item\n")

	var sb strings.Builder
	result.Functions[0].Node.Accept(NewPrinterVisitor(&sb))
	out := sb.String()

	assert.Contains(t, out, "Function #")
	assert.Contains(t, out, "  Block #")
	assert.Contains(t, out, "    Emit #")
	assert.Contains(t, out, "      Identifier #")
	assert.Contains(t, out, "item")
}
