package match

import (
	"github.com/driftlabs/driftsync/internal/sync/tree"
)

type indexKey struct {
	typ tree.Type
	fp  tree.Fingerprint
}

// Index is a multi-map from (type, fingerprint) to the tracked entries
// sharing it. Candidate order within a bucket is insertion order, which for
// NewIndex means tree preorder.
type Index struct {
	buckets map[indexKey][]*tree.Node
	size    int
}

// NewIndex indexes every entry below root. The root itself is excluded:
// its identity is established by the sync's owner, not by matching.
// Entries without a valid fingerprint are skipped; they can never match.
func NewIndex(root *tree.Node) *Index {
	idx := &Index{buckets: make(map[indexKey][]*tree.Node)}
	root.Walk(func(n *tree.Node) {
		if n == root {
			return
		}
		idx.Add(n)
	})
	return idx
}

// Add registers n as a candidate under its type and fingerprint.
func (idx *Index) Add(n *tree.Node) {
	if !n.Fingerprint.Valid {
		return
	}
	k := indexKey{typ: n.Type, fp: n.Fingerprint}
	idx.buckets[k] = append(idx.buckets[k], n)
	idx.size++
}

// Lookup returns the candidates recorded for the given type and
// fingerprint. The returned slice is owned by the index.
func (idx *Index) Lookup(typ tree.Type, fp tree.Fingerprint) []*tree.Node {
	if !fp.Valid {
		return nil
	}
	return idx.buckets[indexKey{typ: typ, fp: fp}]
}

// Remove withdraws n from candidacy.
func (idx *Index) Remove(n *tree.Node) {
	k := indexKey{typ: n.Type, fp: n.Fingerprint}
	bucket := idx.buckets[k]
	for i, c := range bucket {
		if c == n {
			idx.buckets[k] = append(bucket[:i], bucket[i+1:]...)
			idx.size--
			break
		}
	}
	if len(idx.buckets[k]) == 0 {
		delete(idx.buckets, k)
	}
}

// Len reports how many entries are still candidates.
func (idx *Index) Len() int { return idx.size }
