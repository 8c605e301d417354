package sink

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/errorck-dev/errorck/pkg/classify"
	"github.com/errorck-dev/errorck/pkg/loc"
)

func TestOpenRefusesExistingFileWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.db")

	s, err := Open(path, false)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	if _, err := Open(path, false); err == nil {
		t.Fatalf("expected Open to refuse an existing file without overwrite")
	}

	s2, err := Open(path, true)
	if err != nil {
		t.Fatalf("overwrite open: %v", err)
	}
	s2.Close()
}

func TestInsertDeduplicatesOnUniqueColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.db")

	s, err := Open(path, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	rec := classify.Record{
		Site:     classify.Site{Name: "malloc", Pos: loc.Location{File: "a.c", Line: 3, Column: 7}},
		Category: classify.Ignored,
	}
	if err := s.Insert(rec); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.Insert(rec); err != nil {
		t.Fatalf("duplicate insert should be a silent no-op, got error: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM watched_calls").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after duplicate insert, got %d", count)
	}
}

func TestInsertNullsAssignmentColumnsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.db")

	s, err := Open(path, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	rec := classify.Record{
		Site:     classify.Site{Name: "malloc", Pos: loc.Location{File: "a.c", Line: 1, Column: 1}},
		Category: classify.UsedOther,
	}
	if err := s.Insert(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var assignedFile sql.NullString
	if err := s.db.QueryRow("SELECT assigned_filename FROM watched_calls").Scan(&assignedFile); err != nil {
		t.Fatalf("query: %v", err)
	}
	if assignedFile.Valid {
		t.Fatalf("expected assigned_filename to be NULL, got %q", assignedFile.String)
	}
}
