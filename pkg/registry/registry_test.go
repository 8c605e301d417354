package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "notable-functions.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `[
		{"name": "strtoull", "reporting": "errno"},
		{"name": "malloc", "reporting": "return_value"},
		{"name": "handle", "type": "handler"},
		{"name": "log_error", "type": "logger"}
	]`)

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if reg.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", reg.Len())
	}

	tests := []struct {
		name     string
		wantRole Role
	}{
		{"strtoull", RoleWatchedErrno},
		{"malloc", RoleWatchedReturnValue},
		{"handle", RoleHandler},
		{"log_error", RoleLogger},
	}
	for _, tt := range tests {
		role, ok := reg.Lookup(tt.name)
		if !ok {
			t.Errorf("%s: not found", tt.name)
			continue
		}
		if role != tt.wantRole {
			t.Errorf("%s: got role %s, want %s", tt.name, role, tt.wantRole)
		}
	}

	if _, ok := reg.Lookup("unknown_fn"); ok {
		t.Errorf("unknown_fn: expected not found")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "EmptyName",
			contents: `[{"name": "", "reporting": "errno"}]`,
		},
		{
			name:     "BothReportingAndType",
			contents: `[{"name": "f", "reporting": "errno", "type": "handler"}]`,
		},
		{
			name:     "NeitherSet",
			contents: `[{"name": "f"}]`,
		},
		{
			name:     "UnknownReporting",
			contents: `[{"name": "f", "reporting": "bogus"}]`,
		},
		{
			name:     "UnknownType",
			contents: `[{"name": "f", "type": "bogus"}]`,
		},
		{
			name:     "DuplicateAcrossRoles",
			contents: `[{"name": "f", "reporting": "errno"}, {"name": "f", "type": "handler"}]`,
		},
		{
			name:     "NotAnArray",
			contents: `{"name": "f"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)
			if _, err := Load(path); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
