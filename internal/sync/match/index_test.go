package match

import (
	"testing"

	"github.com/driftlabs/driftsync/internal/sync/tree"
)

func TestIndexExcludesRoot(t *testing.T) {
	root := tree.NewDir("d", tree.DirFingerprint(100))
	sub := root.AddChild(tree.NewDir("d_0", tree.DirFingerprint(100)))

	idx := NewIndex(root)
	if idx.Len() != 1 {
		t.Errorf("Expected 1 indexed entry, got %d", idx.Len())
	}

	got := idx.Lookup(tree.TypeDir, tree.DirFingerprint(100))
	if len(got) != 1 || got[0] != sub {
		t.Errorf("Expected lookup to return only the subdirectory, got %v", got)
	}
}

func TestIndexSkipsInvalidFingerprints(t *testing.T) {
	root := tree.NewDir("d", tree.DirFingerprint(100))
	root.AddChild(tree.NewDir("empty", tree.Fingerprint{}))
	kept := root.AddChild(tree.NewFile("f_0", tree.Fingerprint{Size: 3, MTime: 7, Valid: true}))

	idx := NewIndex(root)
	if idx.Len() != 1 {
		t.Errorf("Expected 1 indexed entry, got %d", idx.Len())
	}
	if got := idx.Lookup(tree.TypeDir, tree.Fingerprint{}); got != nil {
		t.Errorf("Expected nil lookup for invalid fingerprint, got %v", got)
	}
	if got := idx.Lookup(tree.TypeFile, kept.Fingerprint); len(got) != 1 {
		t.Errorf("Expected 1 candidate, got %d", len(got))
	}
}

func TestIndexLookupSeparatesTypes(t *testing.T) {
	fp := tree.Fingerprint{MTime: 42, Valid: true}
	root := tree.NewDir("d", tree.DirFingerprint(100))
	dir := root.AddChild(tree.NewDir("a", fp))
	file := root.AddChild(tree.NewFile("b", fp))

	idx := NewIndex(root)
	if got := idx.Lookup(tree.TypeDir, fp); len(got) != 1 || got[0] != dir {
		t.Errorf("Expected directory candidate, got %v", got)
	}
	if got := idx.Lookup(tree.TypeFile, fp); len(got) != 1 || got[0] != file {
		t.Errorf("Expected file candidate, got %v", got)
	}
}

func TestIndexRemove(t *testing.T) {
	fp := tree.Fingerprint{Size: 9, MTime: 1, Valid: true}
	root := tree.NewDir("d", tree.DirFingerprint(100))
	first := root.AddChild(tree.NewFile("f_0", fp))
	second := root.AddChild(tree.NewFile("f_1", fp))

	idx := NewIndex(root)
	if idx.Len() != 2 {
		t.Fatalf("Expected 2 indexed entries, got %d", idx.Len())
	}

	idx.Remove(first)
	got := idx.Lookup(tree.TypeFile, fp)
	if len(got) != 1 || got[0] != second {
		t.Errorf("Expected only the second entry to remain, got %v", got)
	}
	if idx.Len() != 1 {
		t.Errorf("Expected 1 indexed entry after removal, got %d", idx.Len())
	}

	idx.Remove(second)
	if got := idx.Lookup(tree.TypeFile, fp); got != nil {
		t.Errorf("Expected empty bucket to be dropped, got %v", got)
	}
}
