package index

import (
	"encoding/json"

	"github.com/termfx/symgrep/internal/core"
)

// AttributesFromExtra rehydrates the persisted keyword/description portion
// of a symbol's attributes from a SymbolRecord's opaque Extra payload. The
// leading comment is never persisted; it is re-extracted from source on
// every index pass and is not part of this payload.
func AttributesFromExtra(extra string) *core.SymbolAttributes {
	if extra == "" {
		return nil
	}
	var update core.SymbolAttributesUpdate
	if err := json.Unmarshal([]byte(extra), &update); err != nil {
		return nil
	}
	if len(update.Keywords) == 0 && update.Description == "" {
		return nil
	}
	return &core.SymbolAttributes{Keywords: update.Keywords, Description: update.Description}
}

// ExtraFromAttributes serializes the persistable portion of attrs for
// storage in SymbolRecord.Extra.
func ExtraFromAttributes(update core.SymbolAttributesUpdate) (string, error) {
	if len(update.Keywords) == 0 && update.Description == "" {
		return "", nil
	}
	data, err := json.Marshal(update)
	if err != nil {
		return "", core.IOErr("encoding symbol attributes", err)
	}
	return string(data), nil
}
