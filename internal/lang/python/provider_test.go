package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/symgrep/internal/core"
)

const sampleSource = `class Greeter:
    def greet(self, name):
        return build(name)


def build(name):
    return "hello " + name
`

func TestProviderMetadata(t *testing.T) {
	p := New()
	assert.Equal(t, "python", p.Lang())
	assert.ElementsMatch(t, []string{"python", "py"}, p.Aliases())
	assert.Equal(t, []string{".py"}, p.Extensions())
}

func TestIndexSymbolsPromotesNestedFunctionToMethod(t *testing.T) {
	p := New()
	pf, err := p.Parse("sample.py", []byte(sampleSource))
	require.NoError(t, err)
	symbols, err := p.IndexSymbols(pf)
	require.NoError(t, err)

	kinds := map[string]core.SymbolKind{}
	for _, s := range symbols {
		kinds[s.Name] = s.Kind
	}
	assert.Equal(t, core.KindClass, kinds["Greeter"])
	assert.Equal(t, core.KindMethod, kinds["greet"])
	assert.Equal(t, core.KindFunction, kinds["build"])
}

func TestIndexSymbolsBuildsCallGraphAcrossScopes(t *testing.T) {
	p := New()
	pf, err := p.Parse("sample.py", []byte(sampleSource))
	require.NoError(t, err)
	symbols, err := p.IndexSymbols(pf)
	require.NoError(t, err)

	var greet, build core.Symbol
	for _, s := range symbols {
		switch s.Name {
		case "greet":
			greet = s
		case "build":
			build = s
		}
	}
	require.NotEmpty(t, greet.Calls)
	assert.Equal(t, "build", greet.Calls[0].Name)
	require.NotEmpty(t, build.CalledBy)
	assert.Equal(t, "greet", build.CalledBy[0].Name)
}

func TestContextSnippetParentChainIncludesEnclosingClass(t *testing.T) {
	p := New()
	pf, err := p.Parse("sample.py", []byte(sampleSource))
	require.NoError(t, err)
	symbols, err := p.IndexSymbols(pf)
	require.NoError(t, err)

	var greet core.Symbol
	for _, s := range symbols {
		if s.Name == "greet" {
			greet = s
		}
	}
	info, err := p.ContextSnippet(pf, greet, core.ContextDef)
	require.NoError(t, err)
	require.Len(t, info.ParentChain, 2)
	assert.Equal(t, "Greeter", info.ParentChain[1].Name)
}

func TestIndexSymbolsCapturesDecoratorAdjacentComment(t *testing.T) {
	p := New()
	source := `# marks an entrypoint
@app.route("/")
def handler():
    pass
`
	pf, err := p.Parse("sample.py", []byte(source))
	require.NoError(t, err)
	symbols, err := p.IndexSymbols(pf)
	require.NoError(t, err)

	require.Len(t, symbols, 1)
	require.NotNil(t, symbols[0].Attributes)
	assert.Equal(t, "marks an entrypoint", symbols[0].Attributes.Comment)
}
