package match

import (
	"context"
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/driftlabs/driftsync/internal/fsx"
	"github.com/driftlabs/driftsync/internal/sync/tree"
)

// Policy is consulted once per live entry before any matching happens.
// Rejected entries are neither matched nor recursed into.
type Policy interface {
	IsSyncable(path string, dir bool) bool
}

// Assigner walks a live directory tree and assigns the filesystem
// identifiers it observes to the tracked entries they correspond to.
// Matching is by (type, fingerprint), disambiguated by trailing-path score.
//
// An Assigner mutates the tracked tree and reverse index in place and must
// not be shared across concurrent walks.
type Assigner struct {
	FS         fsx.FS
	Policy     Policy
	DebrisName string

	// Stats describes the most recent Assign call.
	Stats Stats
}

// Stats counts what one Assign walk saw on the live side.
type Stats struct {
	Visited int // entries examined, whether or not they matched
	Skipped int // entries rejected by policy or inside the debris folder
}

// Assign opens rootPath and reconciles everything under it against the
// tracked entries below root, recording assignments in rev. The root entry
// itself is never assigned.
//
// Failure to open the root aborts the walk. Entries that cannot be
// inspected are skipped and reported after the walk completes, with
// assignments made so far left in place; ctx cancellation stops the walk
// between entries. On return every assigned identifier was observed live
// during this call and rev mirrors the tree's identifiers exactly.
func (a *Assigner) Assign(ctx context.Context, rootPath string, root *tree.Node, rev tree.FSIDMap) error {
	dh, err := a.FS.OpenDir(rootPath)
	if err != nil {
		return fmt.Errorf("open sync root %s: %w", rootPath, err)
	}
	w := &walker{
		fs:     a.FS,
		policy: a.Policy,
		idx:    NewIndex(root),
		rev:    rev,
	}
	if a.DebrisName != "" {
		w.debris = path.Join(rootPath, a.DebrisName)
	}
	err = w.walk(ctx, dh, rootPath)
	a.Stats = Stats{Visited: w.visited, Skipped: w.skipped}
	if err != nil {
		return err
	}
	return w.err
}

type walker struct {
	fs      fsx.FS
	policy  Policy
	debris  string
	idx     *Index
	rev     tree.FSIDMap
	err     error
	visited int
	skipped int
}

// fail records a partial failure. The walk continues; only the first
// failure is reported.
func (w *walker) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// walk drains dh, closes it, then processes the entries in listing order.
// The returned error stops the walk entirely and is only non-nil when ctx
// is done.
func (w *walker) walk(ctx context.Context, dh fsx.Dir, dirPath string) error {
	var entries []fsx.Entry
	for {
		e, ok := dh.Next()
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	dh.Close()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := path.Join(dirPath, e.Name)
		if p == w.debris {
			w.skipped++
			continue
		}
		if w.policy != nil && !w.policy.IsSyncable(p, e.Dir) {
			w.skipped++
			continue
		}
		w.visited++

		fp, id, err := w.describe(p, e.Dir)
		if err != nil {
			w.fail(err)
			log.WithError(err).WithField("path", p).Warn("Skipping entry during identity assignment")
			continue
		}

		typ := tree.TypeFile
		if e.Dir {
			typ = tree.TypeDir
		}
		if n := w.pick(typ, fp, p, e.Name); n != nil {
			w.rev.Assign(n, id)
			w.idx.Remove(n)
		}

		if e.Dir {
			sub, err := w.fs.OpenDir(p)
			if err != nil {
				w.fail(fmt.Errorf("open %s: %w", p, err))
				log.WithError(err).WithField("path", p).Warn("Skipping unreadable directory during identity assignment")
				continue
			}
			if err := w.walk(ctx, sub, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// describe opens the entry, computes its fingerprint and captures its
// filesystem identifier, releasing the handle before returning.
func (w *walker) describe(p string, dir bool) (tree.Fingerprint, fsx.ID, error) {
	f, err := w.fs.Open(p)
	if err != nil {
		return tree.Fingerprint{}, fsx.UnsetID, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	var fp tree.Fingerprint
	if dir {
		info, err := f.Stat()
		if err != nil {
			return tree.Fingerprint{}, fsx.UnsetID, fmt.Errorf("stat %s: %w", p, err)
		}
		fp = tree.DirFingerprint(info.MTime)
	} else {
		fp, err = tree.FileFingerprint(f)
		if err != nil {
			return tree.Fingerprint{}, fsx.UnsetID, fmt.Errorf("fingerprint %s: %w", p, err)
		}
	}

	id := f.ID()
	if id == fsx.UnsetID {
		return tree.Fingerprint{}, fsx.UnsetID, fmt.Errorf("%s: filesystem identifier unavailable", p)
	}
	return fp, id, nil
}

// pick selects the tracked entry a live object belongs to, or nil when the
// object is new. A single candidate wins outright. Several candidates are
// ranked by trailing-path score against the live path; equal scores prefer
// the candidate whose recorded name equals the live name, then the earliest
// indexed.
func (w *walker) pick(typ tree.Type, fp tree.Fingerprint, livePath, liveName string) *tree.Node {
	candidates := w.idx.Lookup(typ, fp)
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}
	best := candidates[0]
	bestScore := ReversePathMatchScore(livePath, best.Path())
	for _, c := range candidates[1:] {
		s := ReversePathMatchScore(livePath, c.Path())
		switch {
		case s > bestScore:
			best, bestScore = c, s
		case s == bestScore && best.Name != liveName && c.Name == liveName:
			best = c
		}
	}
	return best
}
