//go:build unix

package fsx

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSOpenAndEnumerate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	fs := NewOS()

	dh, err := fs.OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir(%s) failed: %v", dir, err)
	}
	defer dh.Close()
	entries := map[string]bool{}
	for {
		e, ok := dh.Next()
		if !ok {
			break
		}
		entries[e.Name] = e.Dir
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	if isDir, ok := entries["a.txt"]; !ok || isDir {
		t.Errorf("a.txt reported as isDir=%v, ok=%v", isDir, ok)
	}
	if isDir, ok := entries["sub"]; !ok || !isDir {
		t.Errorf("sub reported as isDir=%v, ok=%v", isDir, ok)
	}

	f, err := fs.Open(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size != 5 {
		t.Errorf("size = %d, want 5", info.Size)
	}
	if f.ID() == UnsetID {
		t.Error("expected a filesystem identifier for a regular file")
	}

	buf := make([]byte, 2)
	if _, err := f.ReadAt(buf, 3); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if string(buf) != "lo" {
		t.Errorf("ReadAt = %q, want %q", buf, "lo")
	}

	// Directories open for metadata too, with their own identifier.
	d, err := fs.Open(filepath.Join(dir, "sub"))
	if err != nil {
		t.Fatalf("Open on directory failed: %v", err)
	}
	defer d.Close()
	if d.ID() == UnsetID {
		t.Error("expected a filesystem identifier for a directory")
	}
	if d.ID() == f.ID() {
		t.Error("directory and file share an identifier")
	}
}

func TestOSOpenMissing(t *testing.T) {
	fs := NewOS()
	if _, err := fs.Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error opening a missing file")
	}
	if _, err := fs.OpenDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error opening a missing directory")
	}
}
