package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/symgrep/internal/core"
)

func uptr(u uint32) *uint32 { return &u }

func TestBuildFollowResultGroupsByNameAndFile(t *testing.T) {
	fnKind := core.KindFunction
	sym := core.Symbol{
		Name: "handleRequest", Kind: core.KindFunction, File: "server.go",
		Calls: []core.CallRef{
			{Name: "validate", File: "server.go", Line: uptr(12), Kind: &fnKind},
			{Name: "validate", File: "server.go", Line: uptr(20), Kind: &fnKind},
			{Name: "validate", File: "other.go", Line: uptr(5), Kind: &fnKind},
			{Name: "logError", File: "server.go", Line: nil},
		},
	}
	result := core.SearchResult{Query: "name:handleRequest", Symbols: []core.Symbol{sym}}

	out := BuildFollowResult(result, core.FollowCallees)

	require.Len(t, out.Targets, 1)
	target := out.Targets[0]
	assert.Equal(t, "handleRequest", target.Symbol.Name)
	assert.Empty(t, target.Callers)
	require.Len(t, target.Callees, 2)

	assert.Equal(t, "other.go", target.Callees[0].Symbol.File)
	assert.Equal(t, "server.go", target.Callees[1].Symbol.File)

	serverGroup := target.Callees[1]
	require.Len(t, serverGroup.CallSites, 2)
	assert.Equal(t, uint32(12), serverGroup.CallSites[0].Line)
	assert.Equal(t, uint32(20), serverGroup.CallSites[1].Line)
}

func TestBuildFollowResultDropsEdgesWithoutLine(t *testing.T) {
	sym := core.Symbol{
		Name: "f", File: "a.go",
		CalledBy: []core.CallRef{{Name: "caller", File: "a.go", Line: nil}},
	}
	result := core.SearchResult{Symbols: []core.Symbol{sym}}

	out := BuildFollowResult(result, core.FollowCallers)

	require.Len(t, out.Targets, 1)
	assert.Empty(t, out.Targets[0].Callers)
}

func TestBuildFollowResultBothDirections(t *testing.T) {
	sym := core.Symbol{
		Name: "f", File: "a.go",
		Calls:    []core.CallRef{{Name: "g", File: "a.go", Line: uptr(3)}},
		CalledBy: []core.CallRef{{Name: "h", File: "a.go", Line: uptr(1)}},
	}
	result := core.SearchResult{Symbols: []core.Symbol{sym}}

	out := BuildFollowResult(result, core.FollowBoth)

	require.Len(t, out.Targets, 1)
	assert.Len(t, out.Targets[0].Callers, 1)
	assert.Len(t, out.Targets[0].Callees, 1)
	assert.Equal(t, core.FollowBoth, out.Direction)
}
