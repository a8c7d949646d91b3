// Package remote is the cloud side of a sync. The reconciler only needs
// a snapshot of the remote tree (names, sizes, modification times) to
// seed tracked state for a root it has never synced; transfers happen
// elsewhere.
package remote

import "context"

// Node is one entry of a remote tree snapshot.
type Node struct {
	ID       string
	Name     string
	IsDir    bool
	Size     int64
	MTime    int64
	Children []*Node
}

// AddChild appends c preserving order and returns it.
func (n *Node) AddChild(c *Node) *Node {
	n.Children = append(n.Children, c)
	return c
}

// Walk visits n and every descendant in depth-first preorder.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Client fetches remote tree snapshots.
type Client interface {
	// Tree returns the subtree below the given remote identifier. The
	// returned root carries the identifier and no name; children keep
	// the remote's listing order.
	Tree(ctx context.Context, rootID string) (*Node, error)
}
