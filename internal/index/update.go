package index

import (
	"github.com/termfx/symgrep/internal/core"
)

// ApplyAttributes locates the symbol identified by selector (matched within
// +/-1 line of drift per core.SymbolSelector.Matches), replaces its
// persisted Keywords/Description with update, and returns the updated
// Symbol. The symbol's leading comment is never touched here: it is owned
// by source code and re-extracted on the next index pass, not by this API.
func ApplyAttributes(cfg core.IndexConfig, selector core.SymbolSelector, update core.SymbolAttributesUpdate) (core.Symbol, error) {
	backend, err := Open(cfg)
	if err != nil {
		return core.Symbol{}, err
	}
	defer backend.Close()

	fileRec, err := backend.GetFileByPath(selector.File)
	if err != nil {
		return core.Symbol{}, err
	}
	if fileRec == nil {
		return core.Symbol{}, core.Wrap(core.ErrKindInvalidInput, "no indexed file matches selector: "+selector.File, core.ErrPathNotFound)
	}

	records, err := backend.QuerySymbols(core.SymbolQuery{Paths: []string{selector.File}})
	if err != nil {
		return core.Symbol{}, err
	}

	matchPos := -1
	newRecords := make([]core.NewSymbolRecord, 0, len(records))
	for i, rec := range records {
		if rec.FileID != fileRec.ID {
			continue
		}
		candidate := core.SymbolSelector{
			File: selector.File, Name: rec.Name, Kind: rec.Kind, Language: rec.Language,
			StartLine: rec.Range.StartLine, EndLine: rec.Range.EndLine,
		}
		if matchPos == -1 && selector.Matches(candidate) {
			matchPos = len(newRecords)
		}
		newRecords = append(newRecords, core.NewSymbolRecord{
			FileID: rec.FileID, Name: rec.Name, Kind: rec.Kind, Language: rec.Language,
			Range: rec.Range, Signature: rec.Signature, Extra: rec.Extra,
		})
	}

	if matchPos == -1 {
		return core.Symbol{}, core.Invalid("no symbol in index matches selector %s %s", selector.Kind, selector.Name)
	}

	extra, err := ExtraFromAttributes(update)
	if err != nil {
		return core.Symbol{}, err
	}
	newRecords[matchPos].Extra = extra

	if err := backend.SetFileSymbols(fileRec.ID, newRecords); err != nil {
		return core.Symbol{}, err
	}

	updated := newRecords[matchPos]
	return core.Symbol{
		Name: updated.Name, Kind: updated.Kind, Language: updated.Language, File: fileRec.Path,
		Range: updated.Range, Signature: updated.Signature, Attributes: AttributesFromExtra(updated.Extra),
	}, nil
}
