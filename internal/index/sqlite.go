package index

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/termfx/symgrep/internal/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id       INTEGER PRIMARY KEY,
	path     TEXT NOT NULL UNIQUE,
	language TEXT NOT NULL,
	hash     TEXT,
	mtime    INTEGER NOT NULL,
	size     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
	id          INTEGER PRIMARY KEY,
	file_id     INTEGER NOT NULL,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	language    TEXT NOT NULL,
	start_line  INTEGER NOT NULL,
	start_col   INTEGER NOT NULL,
	end_line    INTEGER NOT NULL,
	end_col     INTEGER NOT NULL,
	signature   TEXT,
	extra       TEXT,
	FOREIGN KEY(file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);
CREATE INDEX IF NOT EXISTS idx_symbols_language ON symbols(language);
CREATE INDEX IF NOT EXISTS idx_symbols_file_id ON symbols(file_id);
`

// SQLiteBackend stores the index in a single SQLite database file,
// configured for a single writer and multiple concurrent readers.
type SQLiteBackend struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens (or creates) a SQLite-backed index at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, core.IOErr("creating index directory: "+dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, core.IOErr("opening sqlite index: "+path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, core.IOErr("configuring sqlite index: "+pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, core.IOErr("initializing sqlite schema", err)
	}
	return &SQLiteBackend{path: path, db: db}, nil
}

func (b *SQLiteBackend) Kind() core.IndexBackendKind { return core.IndexBackendSQLite }
func (b *SQLiteBackend) IndexPath() string           { return b.path }
func (b *SQLiteBackend) Close() error                { return b.db.Close() }

func (b *SQLiteBackend) LoadMeta() (core.IndexMeta, error) {
	rows, err := b.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return core.IndexMeta{}, core.IOErr("loading index meta", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return core.IndexMeta{}, core.IOErr("scanning index meta", err)
		}
		values[k] = v
	}

	now := time.Now().Unix()
	if len(values) == 0 {
		return core.IndexMeta{
			SchemaVersion: core.SchemaVersionFor(core.IndexBackendSQLite),
			ToolVersion:   core.ToolVersion,
			CreatedAt:     now,
			UpdatedAt:     now,
		}, nil
	}

	schemaVersion := values["schema_version"]
	if schemaVersion == "" {
		schemaVersion = "1"
	}
	if schemaVersion != "1" && schemaVersion != "2" {
		return core.IndexMeta{}, core.ConsistencyErr(
			"unsupported index schema version " + schemaVersion + "; expected 1 or 2")
	}

	toolVersion := values["tool_version"]
	if toolVersion == "" {
		toolVersion = "unknown"
	}
	createdAt, _ := strconv.ParseInt(values["created_at"], 10, 64)
	updatedAt, err := strconv.ParseInt(values["updated_at"], 10, 64)
	if err != nil {
		updatedAt = createdAt
	}

	return core.IndexMeta{
		ID:            values["id"],
		SchemaVersion: schemaVersion,
		ToolVersion:   toolVersion,
		RootPath:      values["root_path"],
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func (b *SQLiteBackend) SaveMeta(meta core.IndexMeta) error {
	tx, err := b.db.Begin()
	if err != nil {
		return core.IOErr("beginning meta transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM meta"); err != nil {
		return core.IOErr("clearing index meta", err)
	}
	rows := [][2]string{
		{"id", meta.ID},
		{"schema_version", meta.SchemaVersion},
		{"tool_version", meta.ToolVersion},
		{"root_path", meta.RootPath},
		{"created_at", strconv.FormatInt(meta.CreatedAt, 10)},
		{"updated_at", strconv.FormatInt(meta.UpdatedAt, 10)},
	}
	for _, row := range rows {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", row[0], row[1]); err != nil {
			return core.IOErr("saving index meta", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.IOErr("committing index meta", err)
	}
	return nil
}

func (b *SQLiteBackend) ListFiles() ([]core.FileRecord, error) {
	rows, err := b.db.Query("SELECT id, path, language, hash, mtime, size FROM files ORDER BY id ASC")
	if err != nil {
		return nil, core.IOErr("listing files", err)
	}
	defer rows.Close()

	var out []core.FileRecord
	for rows.Next() {
		var rec core.FileRecord
		var hash sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Language, &hash, &rec.Mtime, &rec.Size); err != nil {
			return nil, core.IOErr("scanning file record", err)
		}
		rec.Hash = hash.String
		out = append(out, rec)
	}
	return out, nil
}

func (b *SQLiteBackend) GetFileByPath(path string) (*core.FileRecord, error) {
	return b.queryOneFile("SELECT id, path, language, hash, mtime, size FROM files WHERE path = ?", path)
}

func (b *SQLiteBackend) GetFileByID(id int64) (*core.FileRecord, error) {
	return b.queryOneFile("SELECT id, path, language, hash, mtime, size FROM files WHERE id = ?", id)
}

func (b *SQLiteBackend) queryOneFile(query string, arg any) (*core.FileRecord, error) {
	var rec core.FileRecord
	var hash sql.NullString
	err := b.db.QueryRow(query, arg).Scan(&rec.ID, &rec.Path, &rec.Language, &hash, &rec.Mtime, &rec.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, core.IOErr("querying file record", err)
	}
	rec.Hash = hash.String
	return &rec, nil
}

func (b *SQLiteBackend) UpsertFile(path, language, hash string, mtime int64, size int64) (core.FileRecord, error) {
	tx, err := b.db.Begin()
	if err != nil {
		return core.FileRecord{}, core.IOErr("beginning file upsert", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRow("SELECT id FROM files WHERE path = ?", path).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec("INSERT INTO files (path, language, hash, mtime, size) VALUES (?, ?, ?, ?, ?)",
			path, language, nullableString(hash), mtime, size)
		if err != nil {
			return core.FileRecord{}, core.IOErr("inserting file record", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return core.FileRecord{}, core.IOErr("reading inserted file id", err)
		}
		if err := tx.Commit(); err != nil {
			return core.FileRecord{}, core.IOErr("committing file insert", err)
		}
		return core.FileRecord{ID: id, Path: path, Language: language, Hash: hash, Mtime: mtime, Size: size}, nil
	case err != nil:
		return core.FileRecord{}, core.IOErr("looking up file record", err)
	}

	if _, err := tx.Exec("UPDATE files SET language = ?, hash = ?, mtime = ?, size = ? WHERE id = ?",
		language, nullableString(hash), mtime, size, existingID); err != nil {
		return core.FileRecord{}, core.IOErr("updating file record", err)
	}
	if err := tx.Commit(); err != nil {
		return core.FileRecord{}, core.IOErr("committing file update", err)
	}
	return core.FileRecord{ID: existingID, Path: path, Language: language, Hash: hash, Mtime: mtime, Size: size}, nil
}

func (b *SQLiteBackend) RemoveFileByPath(path string) error {
	if _, err := b.db.Exec("DELETE FROM files WHERE path = ?", path); err != nil {
		return core.IOErr("removing file record: "+path, err)
	}
	return nil
}

func (b *SQLiteBackend) SetFileSymbols(fileID int64, symbols []core.NewSymbolRecord) error {
	tx, err := b.db.Begin()
	if err != nil {
		return core.IOErr("beginning symbol replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM symbols WHERE file_id = ?", fileID); err != nil {
		return core.IOErr("clearing file symbols", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO symbols
		(file_id, name, kind, language, start_line, start_col, end_line, end_col, signature, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return core.IOErr("preparing symbol insert", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if _, err := stmt.Exec(fileID, sym.Name, string(sym.Kind), sym.Language,
			sym.Range.StartLine, sym.Range.StartColumn, sym.Range.EndLine, sym.Range.EndColumn,
			nullableString(sym.Signature), nullableString(sym.Extra)); err != nil {
			return core.IOErr("inserting symbol: "+sym.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.IOErr("committing symbol replace", err)
	}
	return nil
}

func (b *SQLiteBackend) QuerySymbols(q core.SymbolQuery) ([]core.SymbolRecord, error) {
	files, err := b.ListFiles()
	if err != nil {
		return nil, err
	}
	pathByID := make(map[int64]string, len(files))
	for _, f := range files {
		pathByID[f.ID] = f.Path
	}

	rows, err := b.db.Query(`SELECT id, file_id, name, kind, language, start_line, start_col, end_line, end_col, signature, extra
		FROM symbols
		WHERE (? = '' OR name LIKE '%' || ? || '%')
		  AND (? = '' OR LOWER(language) = LOWER(?))`,
		q.NameSubstring, q.NameSubstring, q.Language, q.Language)
	if err != nil {
		return nil, core.IOErr("querying symbols", err)
	}
	defer rows.Close()

	var out []core.SymbolRecord
	for rows.Next() {
		var rec core.SymbolRecord
		var signature, extra sql.NullString
		if err := rows.Scan(&rec.ID, &rec.FileID, &rec.Name, &rec.Kind, &rec.Language,
			&rec.Range.StartLine, &rec.Range.StartColumn, &rec.Range.EndLine, &rec.Range.EndColumn,
			&signature, &extra); err != nil {
			return nil, core.IOErr("scanning symbol record", err)
		}
		rec.Signature = signature.String
		rec.Extra = extra.String

		path, ok := pathByID[rec.FileID]
		if !ok {
			continue
		}
		if !matchesPathFilter(path, q) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
