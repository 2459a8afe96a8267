package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/termfx/symgrep/internal/core"
)

// outputFormat selects how a SearchResult/IndexSummary/FollowResult/Symbol
// is rendered to stdout.
type outputFormat string

const (
	formatText  outputFormat = "text"
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSearchResult(result core.SearchResult, format outputFormat) error {
	switch format {
	case formatJSON:
		return printJSON(result)
	case formatTable:
		printSearchTable(result)
		return nil
	default:
		printSearchText(result)
		return nil
	}
}

func printSearchText(result core.SearchResult) {
	for _, m := range result.Matches {
		fmt.Printf("%s:%d:%d: %s\n", m.File, m.Line, m.Column, m.Snippet)
	}
	for i, sym := range result.Symbols {
		suffix := ""
		if sym.DefLineCount != nil {
			suffix = fmt.Sprintf(" (def: %d lines)", *sym.DefLineCount)
		}
		fmt.Printf("%s:%d: %s %s%s\n", sym.File, sym.Range.StartLine, sym.Kind, sym.Name, suffix)
		if sym.Attributes != nil && sym.Attributes.Comment != "" {
			fmt.Printf("  %s\n", strings.ReplaceAll(sym.Attributes.Comment, "\n", "\n  "))
		}
		for _, ctx := range result.Contexts {
			if ctx.SymbolIndex != nil && *ctx.SymbolIndex == i && ctx.Snippet != "" {
				printSnippetIndented(ctx.Snippet)
			}
		}
		for _, match := range sym.Matches {
			fmt.Printf("  match @%d: %s\n", match.Line, match.Snippet)
		}
	}
	fmt.Printf("-- %d match(es)", result.Summary.TotalMatches)
	if result.Summary.Truncated {
		fmt.Print(" (truncated)")
	}
	fmt.Println()
}

func printSnippetIndented(snippet string) {
	for _, line := range strings.Split(snippet, "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func printSearchTable(result core.SearchResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("FILE", "LINE", "KIND", "NAME", "CONTEXT")

	for _, m := range result.Matches {
		table.Append([]string{m.File, strconv.Itoa(int(m.Line)), "", "", truncateCell(m.Snippet, 60)})
	}
	for i, sym := range result.Symbols {
		context := ""
		for _, ctx := range result.Contexts {
			if ctx.SymbolIndex != nil && *ctx.SymbolIndex == i {
				context = firstLine(ctx.Snippet)
				break
			}
		}
		table.Append([]string{
			sym.File, strconv.Itoa(int(sym.Range.StartLine)), string(sym.Kind), sym.Name, truncateCell(context, 60),
		})
	}
	table.Render()
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncateCell(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func printIndexSummary(summary core.IndexSummary, format outputFormat) error {
	if format == formatJSON {
		return printJSON(summary)
	}
	fmt.Printf("backend:         %s\n", summary.Backend)
	fmt.Printf("index_path:      %s\n", summary.IndexPath)
	fmt.Printf("files_indexed:   %d\n", summary.FilesIndexed)
	fmt.Printf("symbols_indexed: %d\n", summary.SymbolsIndexed)
	if summary.IndexID != "" {
		fmt.Printf("index_id:        %s\n", summary.IndexID)
	}
	if summary.RootPath != "" {
		fmt.Printf("root_path:       %s\n", summary.RootPath)
	}
	if summary.SchemaVersion != "" {
		fmt.Printf("schema_version:  %s\n", summary.SchemaVersion)
	}
	if summary.CreatedAt != "" {
		fmt.Printf("created_at:      %s\n", summary.CreatedAt)
	}
	if summary.UpdatedAt != "" {
		fmt.Printf("updated_at:      %s\n", summary.UpdatedAt)
	}
	return nil
}

func printFollowResult(result core.FollowResult, format outputFormat) error {
	if format == formatJSON {
		return printJSON(result)
	}
	for _, target := range result.Targets {
		fmt.Printf("%s (%s) in %s\n", target.Symbol.Name, kindOrUnknown(target.Symbol.Kind), target.Symbol.File)
		printFollowEdges("callers", target.Callers)
		printFollowEdges("callees", target.Callees)
	}
	return nil
}

func kindOrUnknown(k *core.SymbolKind) string {
	if k == nil {
		return "unknown"
	}
	return string(*k)
}

func printFollowEdges(label string, edges []core.FollowEdge) {
	if len(edges) == 0 {
		return
	}
	fmt.Printf("  %s:\n", label)
	for _, edge := range edges {
		fmt.Printf("    %s (%s)\n", edge.Symbol.Name, edge.Symbol.File)
		for _, site := range edge.CallSites {
			fmt.Printf("      %s:%d\n", site.File, site.Line)
		}
	}
}

func printSymbolAttributes(symbol core.Symbol, format outputFormat) error {
	if format == formatJSON {
		return printJSON(symbol)
	}
	fmt.Printf("%s:%d: %s %s\n", symbol.File, symbol.Range.StartLine, symbol.Kind, symbol.Name)
	if symbol.Attributes != nil {
		if len(symbol.Attributes.Keywords) > 0 {
			fmt.Printf("  keywords: %s\n", strings.Join(symbol.Attributes.Keywords, ", "))
		}
		if symbol.Attributes.Description != "" {
			fmt.Printf("  description: %s\n", symbol.Attributes.Description)
		}
	}
	return nil
}
