package core

// QueryField names one fielded term target in the DSL.
type QueryField string

const (
	FieldName        QueryField = "name"
	FieldKind        QueryField = "kind"
	FieldFile        QueryField = "file"
	FieldLanguage    QueryField = "language"
	FieldContent     QueryField = "content"
	FieldComment     QueryField = "comment"
	FieldKeyword     QueryField = "keyword"
	FieldDescription QueryField = "description"
	FieldCalls       QueryField = "calls"
	FieldCalledBy    QueryField = "called_by"
)

// MetadataFields can be evaluated without materializing a context snippet.
var MetadataFields = map[QueryField]bool{
	FieldName:     true,
	FieldKind:     true,
	FieldFile:     true,
	FieldLanguage: true,
	FieldCalls:    true,
	FieldCalledBy: true,
}

// IsBodyField reports whether a term requires a materialized snippet or
// symbol attributes to evaluate.
func IsBodyField(f QueryField) bool {
	return f == FieldContent || f == FieldComment || f == FieldDescription
}

// QueryTerm is a single fielded value with optional exact/literal
// modifiers. Exact (a leading "=") forces equality regardless of the
// literal flag; Literal requests word-boundary matching for content terms
// and exact matching for name terms when Exact is not already set.
type QueryTerm struct {
	Field   QueryField
	Value   string
	Exact   bool
	Literal bool
}

// QueryExpr is an AND of OR-groups: Groups[i] is one AND slot, and the
// terms within Groups[i] are alternatives joined by OR.
type QueryExpr struct {
	Groups [][]QueryTerm
	// ContentOnly marks a pattern with no ":" anywhere, evaluated as a
	// content/text query with "|" meaning OR across plain substrings.
	ContentOnly bool
	Raw         string
}

// HasField reports whether any term across any group targets f.
func (q *QueryExpr) HasField(f QueryField) bool {
	for _, g := range q.Groups {
		for _, t := range g {
			if t.Field == f {
				return true
			}
		}
	}
	return false
}

// HasCallGraphTerms reports whether the expression references calls or
// called_by, which require AST-level data the index does not store.
func (q *QueryExpr) HasCallGraphTerms() bool {
	return q.HasField(FieldCalls) || q.HasField(FieldCalledBy)
}

// HasBodyTerms reports whether any term requires a materialized body.
func (q *QueryExpr) HasBodyTerms() bool {
	for _, g := range q.Groups {
		for _, t := range g {
			if IsBodyField(t.Field) {
				return true
			}
		}
	}
	return false
}
