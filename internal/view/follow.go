// Package view projects a symbol-mode SearchResult into the caller/callee
// graph consumed by the follow operation.
package view

import (
	"context"
	"sort"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/search"
)

// RunFollow executes the non-indexed symbol search every follow invocation
// needs (fresh call edges, never a stale index) and projects the result.
func RunFollow(ctx context.Context, cfg core.SearchConfig, direction core.FollowDirection) (core.FollowResult, error) {
	cfg.Index = nil
	result, err := search.Run(ctx, cfg)
	if err != nil {
		return core.FollowResult{}, err
	}
	return BuildFollowResult(result, direction), nil
}

// BuildFollowResult groups each matched symbol's Calls/CalledBy edges by
// direction into a FollowResult.
func BuildFollowResult(result core.SearchResult, direction core.FollowDirection) core.FollowResult {
	targets := make([]core.FollowTarget, 0, len(result.Symbols))

	for _, sym := range result.Symbols {
		target := core.FollowTarget{
			Symbol: core.FollowSymbolRef{Name: sym.Name, Kind: kindPtr(sym.Kind), File: sym.File},
		}

		if direction == core.FollowCallers || direction == core.FollowBoth {
			target.Callers = groupCallEdges(sym.CalledBy)
		}
		if direction == core.FollowCallees || direction == core.FollowBoth {
			target.Callees = groupCallEdges(sym.Calls)
		}

		targets = append(targets, target)
	}

	return core.FollowResult{
		Version:   core.FollowResultSchemaVersion,
		Direction: direction,
		Query:     result.Query,
		Targets:   targets,
	}
}

type groupKey struct {
	name string
	file string
}

type tempGroup struct {
	kind      *core.SymbolKind
	callSites []core.FollowCallSite
}

// groupCallEdges collects edges sharing a (name, file) pair into one
// FollowEdge, dropping edges with no known call-site line. Groups and
// their call sites are returned in a stable, sorted order.
func groupCallEdges(edges []core.CallRef) []core.FollowEdge {
	grouped := make(map[groupKey]*tempGroup)
	var order []groupKey

	for _, edge := range edges {
		if edge.Line == nil {
			continue
		}
		key := groupKey{name: edge.Name, file: edge.File}
		g, ok := grouped[key]
		if !ok {
			g = &tempGroup{}
			grouped[key] = g
			order = append(order, key)
		}
		if g.kind == nil {
			g.kind = edge.Kind
		}
		g.callSites = append(g.callSites, core.FollowCallSite{File: edge.File, Line: *edge.Line})
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].name != order[j].name {
			return order[i].name < order[j].name
		}
		return order[i].file < order[j].file
	})

	result := make([]core.FollowEdge, 0, len(order))
	for _, key := range order {
		g := grouped[key]
		if len(g.callSites) == 0 {
			continue
		}
		sort.Slice(g.callSites, func(i, j int) bool {
			return g.callSites[i].Line < g.callSites[j].Line
		})
		result = append(result, core.FollowEdge{
			Symbol:    core.FollowSymbolRef{Name: key.name, Kind: g.kind, File: key.file},
			CallSites: g.callSites,
		})
	}
	return result
}

func kindPtr(k core.SymbolKind) *core.SymbolKind {
	return &k
}
