// Package tree holds the in-memory tracked-entry tree the sync engine
// reconciles against the live filesystem: one Node per previously known
// file or directory, plus the reverse index from filesystem identifiers
// back into the tree.
package tree

import (
	"strings"

	"github.com/driftlabs/driftsync/internal/fsx"
)

// Type distinguishes tracked files from tracked directories.
type Type int

const (
	TypeFile Type = iota
	TypeDir
)

func (t Type) String() string {
	if t == TypeDir {
		return "dir"
	}
	return "file"
}

// Node is one tracked entry. The tree is single-owner and mutated only by
// the sync engine; nothing here locks.
type Node struct {
	Type        Type
	Name        string
	Fingerprint Fingerprint
	FSID        fsx.ID
	Parent      *Node
	Children    []*Node
}

// NewDir returns a directory node. The root node's Name is conventionally
// the sync's local root path, so descendant Paths are live paths.
func NewDir(name string, fp Fingerprint) *Node {
	return &Node{Type: TypeDir, Name: name, Fingerprint: fp}
}

// NewFile returns a file node.
func NewFile(name string, fp Fingerprint) *Node {
	return &Node{Type: TypeFile, Name: name, Fingerprint: fp}
}

// AddChild appends c to n preserving insertion order and returns c.
func (n *Node) AddChild(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Type == TypeDir }

// Path joins names from the root down to n with '/'.
func (n *Node) Path() string {
	if n.Parent == nil {
		return n.Name
	}
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// RelPath is Path without the root prefix, empty for the root itself.
func (n *Node) RelPath() string {
	if n.Parent == nil {
		return ""
	}
	var parts []string
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Walk visits n and every descendant in depth-first preorder.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FSIDMap is the reverse index from assigned filesystem identifiers to
// tracked entries. A node appears here exactly when its FSID is set; the
// two sides are kept in step through Assign and Forget.
type FSIDMap map[fsx.ID]*Node

// Assign records id on n and indexes it, dropping any stale mapping n held.
func (m FSIDMap) Assign(n *Node, id fsx.ID) {
	if n.FSID != fsx.UnsetID && m[n.FSID] == n {
		delete(m, n.FSID)
	}
	n.FSID = id
	m[id] = n
}

// Forget clears n's identifier and removes it from the index.
func (m FSIDMap) Forget(n *Node) {
	if n.FSID == fsx.UnsetID {
		return
	}
	if m[n.FSID] == n {
		delete(m, n.FSID)
	}
	n.FSID = fsx.UnsetID
}

// Get returns the tracked entry assigned the given identifier.
func (m FSIDMap) Get(id fsx.ID) (*Node, bool) {
	n, ok := m[id]
	return n, ok
}
