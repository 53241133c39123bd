package layouts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(`{"rows": ["__"]}`), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "north.json"))
	writeFile(t, filepath.Join(dir, "annex.JSON"))
	writeFile(t, filepath.Join(dir, ".hidden.json"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	entries, err := ScanDirectory(dir)
	if err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 layouts, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "annex" || entries[1].Name != "north" {
		t.Errorf("Expected [annex north], got [%s %s]", entries[0].Name, entries[1].Name)
	}
	if entries[1].Path != filepath.Join(dir, "north.json") {
		t.Errorf("Expected path %s, got %s", filepath.Join(dir, "north.json"), entries[1].Path)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "north.json"))

	e, err := Find(dir, "north")
	if err != nil {
		t.Fatalf("Failed to find layout: %v", err)
	}
	if e.Name != "north" {
		t.Errorf("Expected north, got %s", e.Name)
	}

	if _, err := Find(dir, "south"); err == nil {
		t.Error("Expected error for missing layout")
	}
	if _, err := ScanDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
