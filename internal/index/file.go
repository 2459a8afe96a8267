package index

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/termfx/symgrep/internal/core"
)

// FileBackend stores the index under a directory as meta.json,
// files.jsonl, and symbols.jsonl, rewritten atomically (write to a
// sibling .tmp file, then rename) on every mutation.
type FileBackend struct {
	root        string
	files       []core.FileRecord
	filesByPath map[string]core.FileRecord
	nextFileID  int64
}

// OpenFile opens (or creates) a JSONL-backed index rooted at dir.
func OpenFile(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.IOErr("creating index directory: "+dir, err)
	}

	b := &FileBackend{root: dir, filesByPath: map[string]core.FileRecord{}}
	if err := b.loadFiles(); err != nil {
		return nil, err
	}
	for _, f := range b.files {
		if f.ID > b.nextFileID {
			b.nextFileID = f.ID
		}
	}
	return b, nil
}

func (b *FileBackend) Kind() core.IndexBackendKind { return core.IndexBackendFile }
func (b *FileBackend) IndexPath() string           { return b.root }
func (b *FileBackend) Close() error                { return nil }

func (b *FileBackend) metaPath() string    { return filepath.Join(b.root, "meta.json") }
func (b *FileBackend) filesPath() string   { return filepath.Join(b.root, "files.jsonl") }
func (b *FileBackend) symbolsPath() string { return filepath.Join(b.root, "symbols.jsonl") }

func (b *FileBackend) loadFiles() error {
	path := b.filesPath()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.IOErr("opening files.jsonl", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec core.FileRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return core.ParseErr("decoding files.jsonl record", err)
		}
		b.files = append(b.files, rec)
		b.filesByPath[rec.Path] = rec
	}
	if err := scanner.Err(); err != nil {
		return core.IOErr("reading files.jsonl", err)
	}
	return nil
}

func (b *FileBackend) persistFiles() error {
	return writeJSONLAtomic(b.filesPath(), len(b.files), func(enc *json.Encoder) error {
		for _, rec := range b.files {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeJSONLAtomic(path string, _ int, write func(*json.Encoder) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return core.IOErr("creating "+tmp, err)
	}
	enc := json.NewEncoder(f)
	if err := write(enc); err != nil {
		f.Close()
		os.Remove(tmp)
		return core.IOErr("writing "+tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return core.IOErr("closing "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return core.IOErr("renaming "+tmp+" to "+path, err)
	}
	return nil
}

func (b *FileBackend) LoadMeta() (core.IndexMeta, error) {
	f, err := os.Open(b.metaPath())
	if os.IsNotExist(err) {
		now := nowUnix()
		return core.IndexMeta{
			SchemaVersion: core.SchemaVersionFor(core.IndexBackendFile),
			ToolVersion:   core.ToolVersion,
			CreatedAt:     now,
			UpdatedAt:     now,
		}, nil
	}
	if err != nil {
		return core.IndexMeta{}, core.IOErr("opening meta.json", err)
	}
	defer f.Close()

	var meta core.IndexMeta
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return core.IndexMeta{}, core.ParseErr("decoding meta.json", err)
	}
	if meta.SchemaVersion != "1" {
		return core.IndexMeta{}, core.ConsistencyErr(
			"unsupported index schema version " + meta.SchemaVersion + "; expected 1")
	}
	return meta, nil
}



func (b *FileBackend) SaveMeta(meta core.IndexMeta) error {
	tmp := b.metaPath() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return core.IOErr("creating meta.json.tmp", err)
	}
	if err := json.NewEncoder(f).Encode(meta); err != nil {
		f.Close()
		os.Remove(tmp)
		return core.IOErr("writing meta.json.tmp", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return core.IOErr("closing meta.json.tmp", err)
	}
	return os.Rename(tmp, b.metaPath())
}

func (b *FileBackend) ListFiles() ([]core.FileRecord, error) {
	out := make([]core.FileRecord, len(b.files))
	copy(out, b.files)
	return out, nil
}

func (b *FileBackend) GetFileByPath(path string) (*core.FileRecord, error) {
	if rec, ok := b.filesByPath[path]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (b *FileBackend) GetFileByID(id int64) (*core.FileRecord, error) {
	for _, rec := range b.files {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, nil
}

func (b *FileBackend) UpsertFile(path, language, hash string, mtime int64, size int64) (core.FileRecord, error) {
	if existing, ok := b.filesByPath[path]; ok {
		existing.Language, existing.Hash, existing.Mtime, existing.Size = language, hash, mtime, size
		for i := range b.files {
			if b.files[i].ID == existing.ID {
				b.files[i] = existing
			}
		}
		b.filesByPath[path] = existing
		if err := b.persistFiles(); err != nil {
			return core.FileRecord{}, err
		}
		return existing, nil
	}

	b.nextFileID++
	rec := core.FileRecord{ID: b.nextFileID, Path: path, Language: language, Hash: hash, Mtime: mtime, Size: size}
	b.files = append(b.files, rec)
	b.filesByPath[path] = rec
	if err := b.persistFiles(); err != nil {
		return core.FileRecord{}, err
	}
	return rec, nil
}

func (b *FileBackend) RemoveFileByPath(path string) error {
	rec, ok := b.filesByPath[path]
	if !ok {
		return nil
	}
	delete(b.filesByPath, path)
	kept := b.files[:0]
	for _, f := range b.files {
		if f.ID != rec.ID {
			kept = append(kept, f)
		}
	}
	b.files = kept
	if err := b.persistFiles(); err != nil {
		return err
	}
	return b.rewriteSymbolsExcluding(rec.ID)
}

func (b *FileBackend) loadAllSymbols() ([]core.SymbolRecord, error) {
	f, err := os.Open(b.symbolsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.IOErr("opening symbols.jsonl", err)
	}
	defer f.Close()

	var out []core.SymbolRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec core.SymbolRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, core.ParseErr("decoding symbols.jsonl record", err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.IOErr("reading symbols.jsonl", err)
	}
	return out, nil
}

func (b *FileBackend) rewriteSymbolsExcluding(fileID int64) error {
	all, err := b.loadAllSymbols()
	if err != nil {
		return err
	}
	var kept []core.SymbolRecord
	for _, s := range all {
		if s.FileID != fileID {
			kept = append(kept, s)
		}
	}
	return writeJSONLAtomic(b.symbolsPath(), len(kept), func(enc *json.Encoder) error {
		for _, s := range kept {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *FileBackend) SetFileSymbols(fileID int64, symbols []core.NewSymbolRecord) error {
	all, err := b.loadAllSymbols()
	if err != nil {
		return err
	}

	var nextID int64
	var kept []core.SymbolRecord
	for _, s := range all {
		if s.ID > nextID {
			nextID = s.ID
		}
		if s.FileID != fileID {
			kept = append(kept, s)
		}
	}

	for _, n := range symbols {
		nextID++
		kept = append(kept, core.SymbolRecord{
			ID: nextID, FileID: fileID, Name: n.Name, Kind: n.Kind, Language: n.Language,
			Range: n.Range, Signature: n.Signature, Extra: n.Extra,
		})
	}

	return writeJSONLAtomic(b.symbolsPath(), len(kept), func(enc *json.Encoder) error {
		for _, s := range kept {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *FileBackend) QuerySymbols(q core.SymbolQuery) ([]core.SymbolRecord, error) {
	all, err := b.loadAllSymbols()
	if err != nil {
		return nil, err
	}
	pathByID := make(map[int64]string, len(b.files))
	for _, f := range b.files {
		pathByID[f.ID] = f.Path
	}

	var out []core.SymbolRecord
	for _, s := range all {
		if q.NameSubstring != "" && !containsFold(s.Name, q.NameSubstring) {
			continue
		}
		if q.Language != "" && !equalFold(s.Language, q.Language) {
			continue
		}
		path, ok := pathByID[s.FileID]
		if !ok || !matchesPathFilter(path, q) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
