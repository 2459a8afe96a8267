package provider

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/termfx/symgrep/internal/core"
)

// NodeRange computes a TextRange for a tree-sitter node, converting its
// 0-based points into 1-based inclusive-start/exclusive-end-column
// positions.
func NodeRange(n *sitter.Node) core.TextRange {
	start := n.StartPoint()
	end := n.EndPoint()
	return core.TextRange{
		StartLine:   start.Row + 1,
		StartColumn: start.Column + 1,
		EndLine:     end.Row + 1,
		EndColumn:   end.Column + 1,
	}
}

// RangeToPoints is the inverse of NodeRange, used with
// Node.NamedDescendantForPointRange to relocate a symbol's node after it
// was recorded only as a TextRange.
func RangeToPoints(r core.TextRange) (sitter.Point, sitter.Point) {
	start := sitter.Point{Row: satSub(r.StartLine, 1), Column: satSub(r.StartColumn, 1)}
	end := sitter.Point{Row: satSub(r.EndLine, 1), Column: satSub(r.EndColumn, 1)}
	return start, end
}

func satSub(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}

// FileContextNode builds the outermost, Kind=nil ContextNode used as the
// base of every parent chain.
func FileContextNode(path string) core.ContextNode {
	return core.ContextNode{Name: filepath.Base(path)}
}

// SnippetForRange slices source into the inclusive line range described by
// r, clamping to the file's actual line count. An out-of-bounds start
// yields an empty snippet, mirroring the original engine's tolerance of
// slightly stale ranges.
func SnippetForRange(source []byte, r core.TextRange) string {
	lines := splitLines(source)
	if len(lines) == 0 {
		return ""
	}
	startIdx := int(r.StartLine) - 1
	if startIdx < 0 || startIdx >= len(lines) {
		return ""
	}
	endIdx := int(r.EndLine) - 1
	if endIdx >= len(lines) {
		endIdx = len(lines) - 1
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}
	return strings.Join(lines[startIdx:endIdx+1], "\n")
}

func splitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(source), "\n"), "\n")
}

// BasicContextSnippet builds a ContextInfo from a symbol's own range: a
// single narrowed line for Decl, the full range for Def/Parent.
func BasicContextSnippet(source []byte, symbolFile string, symRange core.TextRange, kind core.ContextKind) core.ContextInfo {
	lines := splitLines(source)

	var startLine, endLine uint32
	switch kind {
	case core.ContextDecl:
		startLine, endLine = symRange.StartLine, symRange.StartLine
	default:
		startLine, endLine = symRange.StartLine, symRange.EndLine
	}

	startIdx := int(startLine) - 1
	if len(lines) == 0 || startIdx < 0 || startIdx >= len(lines) {
		return core.ContextInfo{Kind: kind, File: symbolFile, Range: symRange}
	}
	endIdx := int(endLine) - 1
	if endIdx >= len(lines) {
		endIdx = len(lines) - 1
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}
	snippet := strings.Join(lines[startIdx:endIdx+1], "\n")

	resultRange := symRange
	if kind == core.ContextDecl {
		lineText := lines[startIdx]
		resultRange = core.TextRange{
			StartLine:   startLine,
			StartColumn: 1,
			EndLine:     startLine,
			EndColumn:   uint32(len(lineText)) + 1,
		}
	}

	return core.ContextInfo{Kind: kind, File: symbolFile, Range: resultRange, Snippet: snippet}
}

// commentLineKind classifies a single line when walking upward from a
// symbol's start line to collect its leading comment.
type commentLineKind int

const (
	clNotComment commentLineKind = iota
	clDelimiter
	clContent
)

func classifyCommentLine(line string) (commentLineKind, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return clNotComment, ""
	}
	switch {
	case strings.HasPrefix(trimmed, "//"):
		body := strings.TrimSpace(strings.TrimLeft(trimmed, "/"))
		if body == "" {
			return clDelimiter, ""
		}
		return clContent, body
	case strings.HasPrefix(trimmed, "/*"):
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "/*"))
		body = strings.TrimSpace(strings.TrimPrefix(body, "*"))
		if strings.HasSuffix(body, "*/") {
			body = strings.TrimSpace(strings.TrimSuffix(body, "*/"))
		}
		if body == "" {
			return clDelimiter, ""
		}
		return clContent, body
	case strings.HasPrefix(trimmed, "#"):
		body := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if body == "" {
			return clDelimiter, ""
		}
		return clContent, body
	case strings.HasPrefix(trimmed, "*"):
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "*"))
		if body == "" {
			return clDelimiter, ""
		}
		return clContent, body
	default:
		return clNotComment, ""
	}
}

// CollectLeadingComment walks upward from startLine-1 (1-based, the
// symbol's first line), aggregating contiguous comment lines and any line
// matching isDecoratorLine (e.g. Python's "@decorator" or Java annotation
// lines). It stops at the first blank line or non-comment/non-decorator
// line, returning normalized text (delimiters stripped) and the original
// source TextRange of the collected block.
func CollectLeadingComment(source []byte, startLine uint32, isDecoratorLine func(string) bool) (string, core.TextRange, bool) {
	if startLine <= 1 {
		return "", core.TextRange{}, false
	}
	lines := splitLines(source)
	if len(lines) == 0 {
		return "", core.TextRange{}, false
	}

	idx := int(startLine) - 1
	if idx == 0 {
		return "", core.TextRange{}, false
	}
	idx--

	var collected []string
	sawAny := false
	minIdx, maxIdx := -1, -1

	for idx >= 0 && idx < len(lines) {
		line := strings.TrimRight(lines[idx], " \t")
		if strings.TrimSpace(line) == "" {
			break
		}
		if isDecoratorLine != nil && isDecoratorLine(line) {
			sawAny = true
			if idx == 0 {
				break
			}
			idx--
			continue
		}
		kind, body := classifyCommentLine(line)
		switch kind {
		case clContent:
			sawAny = true
			collected = append(collected, body)
			if minIdx == -1 || idx < minIdx {
				minIdx = idx
			}
			if maxIdx == -1 || idx > maxIdx {
				maxIdx = idx
			}
			if idx == 0 {
				idx = -1
				continue
			}
			idx--
		case clDelimiter:
			sawAny = true
			if minIdx == -1 || idx < minIdx {
				minIdx = idx
			}
			if maxIdx == -1 || idx > maxIdx {
				maxIdx = idx
			}
			if idx == 0 {
				idx = -1
				continue
			}
			idx--
		default:
			idx = -1
		}
	}
	_ = sawAny

	if len(collected) == 0 {
		return "", core.TextRange{}, false
	}

	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	text := strings.Join(collected, "\n")

	startIdx := minIdx
	if startIdx == -1 {
		startIdx = 0
	}
	endIdx := maxIdx
	if endIdx == -1 {
		endIdx = startIdx
	}
	endText := ""
	if endIdx < len(lines) {
		endText = lines[endIdx]
	}
	r := core.TextRange{
		StartLine:   uint32(startIdx) + 1,
		StartColumn: 1,
		EndLine:     uint32(endIdx) + 1,
		EndColumn:   uint32(len(endText)) + 1,
	}
	return text, r, true
}
