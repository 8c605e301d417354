// Package sink persists classification records to a SQLite database via
// modernc.org/sqlite, a pure-Go driver chosen so errorck never needs cgo or
// a system libsqlite3 (spec.md §6 "Sink layout").
package sink

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/errorck-dev/errorck/pkg/classify"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE watched_calls (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	filename           TEXT NOT NULL,
	line               INTEGER NOT NULL,
	column             INTEGER NOT NULL,
	handling_type      TEXT NOT NULL,
	assigned_filename  TEXT,
	assigned_line      INTEGER,
	assigned_column    INTEGER,
	UNIQUE(name, filename, line, column, handling_type)
);
`

const insertSQL = `
INSERT INTO watched_calls (name, filename, line, column, handling_type, assigned_filename, assigned_line, assigned_column)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, filename, line, column, handling_type) DO NOTHING;
`

// Sink is the single-writer destination for classification records. Per
// spec.md §5, exactly one Sink is open per run: the batch driver is the sole
// writer, even when translation units are analyzed in parallel worker
// processes.
type Sink struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// Open creates the sink database at path, enforcing the exclusive-open
// semantics of spec.md §5: an existing file is refused unless overwrite is
// true, in which case it is truncated first.
func Open(path string, overwrite bool) (*Sink, error) {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return nil, fmt.Errorf("sink: %s already exists (use --overwrite-if-needed)", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("sink: removing existing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("sink: stat %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sink: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: creating schema: %w", err)
	}

	stmt, err := db.Prepare(insertSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: preparing insert: %w", err)
	}

	return &Sink{db: db, stmt: stmt}, nil
}

// Insert writes one classification record. Only assigned_not_read records
// carry a non-nil AssignSite; every other category's assignment columns are
// bound as SQL NULL (spec.md §8 invariant 6).
func (s *Sink) Insert(rec classify.Record) error {
	var assignedFile sql.NullString
	var assignedLine, assignedColumn sql.NullInt64

	if rec.AssignSite != nil {
		assignedFile = sql.NullString{String: rec.AssignSite.File, Valid: true}
		assignedLine = sql.NullInt64{Int64: int64(rec.AssignSite.Line), Valid: true}
		assignedColumn = sql.NullInt64{Int64: int64(rec.AssignSite.Column), Valid: true}
	}

	_, err := s.stmt.Exec(
		rec.Site.Name,
		rec.Site.Pos.File,
		rec.Site.Pos.Line,
		rec.Site.Pos.Column,
		string(rec.Category),
		assignedFile,
		assignedLine,
		assignedColumn,
	)
	if err != nil {
		return fmt.Errorf("sink: insert %s at %s:%d:%d: %w", rec.Site.Name, rec.Site.Pos.File, rec.Site.Pos.Line, rec.Site.Pos.Column, err)
	}
	return nil
}

// Close releases the sink's prepared statement and database handle.
func (s *Sink) Close() error {
	if err := s.stmt.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
