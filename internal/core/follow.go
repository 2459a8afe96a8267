package core

// FollowResultSchemaVersion is the current FollowResult envelope version.
const FollowResultSchemaVersion = "1.0.0"

// FollowDirection selects which side of the call graph a follow projection
// populates.
type FollowDirection string

const (
	FollowCallers FollowDirection = "callers"
	FollowCallees FollowDirection = "callees"
	FollowBoth    FollowDirection = "both"
)

// FollowSymbolRef identifies the symbol a FollowTarget/FollowEdge refers to.
type FollowSymbolRef struct {
	Name string      `json:"name"`
	Kind *SymbolKind `json:"kind,omitempty"`
	File string      `json:"file"`
}

// FollowCallSite is one call-site reference by file and line (no column);
// only entries with a known line survive grouping.
type FollowCallSite struct {
	File string `json:"file"`
	Line uint32 `json:"line"`
}

// FollowEdge groups one distinct (name, file) callee/caller with its sorted
// call sites.
type FollowEdge struct {
	Symbol    FollowSymbolRef  `json:"symbol"`
	CallSites []FollowCallSite `json:"call_sites"`
}

// FollowTarget is one matched symbol and its caller/callee edges.
type FollowTarget struct {
	Symbol   FollowSymbolRef `json:"symbol"`
	Callers  []FollowEdge    `json:"callers,omitempty"`
	Callees  []FollowEdge    `json:"callees,omitempty"`
}

// FollowResult is the schema-versioned envelope returned by the follow
// projection.
type FollowResult struct {
	Version   string          `json:"version"`
	Query     string          `json:"query"`
	Direction FollowDirection `json:"direction"`
	Targets   []FollowTarget  `json:"targets"`
}
