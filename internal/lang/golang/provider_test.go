package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/provider"
)

const sampleSource = `package sample

// Greeter says hello.
type Greeter struct {
	Name string
}

// Greet returns a greeting for the receiver.
func (g *Greeter) Greet() string {
	return build(g.Name)
}

func build(name string) string {
	return "hello " + name
}

var defaultName = "world"
`

func parseSample(t *testing.T) (*provider.ParsedFile, []core.Symbol) {
	t.Helper()
	p := New()
	pf, err := p.Parse("sample.go", []byte(sampleSource))
	require.NoError(t, err)
	symbols, err := p.IndexSymbols(pf)
	require.NoError(t, err)
	return pf, symbols
}

func TestProviderMetadata(t *testing.T) {
	p := New()
	assert.Equal(t, "go", p.Lang())
	assert.ElementsMatch(t, []string{"go", "golang"}, p.Aliases())
	assert.Equal(t, []string{".go"}, p.Extensions())
	assert.NotNil(t, p.GetSitterLanguage())
}

func TestParseRejectsSyntaxErrors(t *testing.T) {
	p := New()
	_, err := p.Parse("bad.go", []byte("package bad\nfunc {{{\n"))
	require.Error(t, err)
}

func TestIndexSymbolsFindsEveryTopLevelDeclaration(t *testing.T) {
	_, symbols := parseSample(t)

	names := map[string]core.SymbolKind{}
	for _, s := range symbols {
		names[s.Name] = s.Kind
	}
	assert.Equal(t, core.KindClass, names["Greeter"])
	assert.Equal(t, core.KindMethod, names["Greet"])
	assert.Equal(t, core.KindFunction, names["build"])
	assert.Equal(t, core.KindVariable, names["defaultName"])
}

func TestIndexSymbolsAttachesMethodSignature(t *testing.T) {
	_, symbols := parseSample(t)
	for _, s := range symbols {
		if s.Name == "Greet" {
			assert.Equal(t, "(Greeter) Greet", s.Signature)
			return
		}
	}
	t.Fatal("Greet method not found")
}

func TestIndexSymbolsCapturesLeadingComment(t *testing.T) {
	_, symbols := parseSample(t)
	for _, s := range symbols {
		if s.Name == "Greeter" {
			require.NotNil(t, s.Attributes)
			assert.Equal(t, "Greeter says hello.", s.Attributes.Comment)
			return
		}
	}
	t.Fatal("Greeter type not found")
}

func TestIndexSymbolsBuildsIntraFileCallGraph(t *testing.T) {
	_, symbols := parseSample(t)
	var greet, build core.Symbol
	for _, s := range symbols {
		switch s.Name {
		case "Greet":
			greet = s
		case "build":
			build = s
		}
	}
	require.NotEmpty(t, greet.Calls)
	assert.Equal(t, "build", greet.Calls[0].Name)
	require.NotEmpty(t, build.CalledBy)
	assert.Equal(t, "Greet", build.CalledBy[0].Name)
}

func TestContextSnippetDeclStopsBeforeFunctionBody(t *testing.T) {
	p := New()
	pf, symbols := parseSample(t)
	var build core.Symbol
	for _, s := range symbols {
		if s.Name == "build" {
			build = s
		}
	}
	info, err := p.ContextSnippet(pf, build, core.ContextDecl)
	require.NoError(t, err)
	assert.Equal(t, "func build(name string) string {", info.Snippet)
}

func TestContextSnippetParentChainIncludesReceiverType(t *testing.T) {
	p := New()
	pf, symbols := parseSample(t)
	var greet core.Symbol
	for _, s := range symbols {
		if s.Name == "Greet" {
			greet = s
		}
	}
	info, err := p.ContextSnippet(pf, greet, core.ContextDef)
	require.NoError(t, err)
	require.Len(t, info.ParentChain, 2)
	assert.Equal(t, "Greeter", info.ParentChain[1].Name)
}
