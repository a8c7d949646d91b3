// Package sync drives reconcile runs: it restores the tracked-entry tree
// from the state cache, reassigns live filesystem identifiers to tracked
// entries and persists the outcome for the next run.
package sync

import (
	"context"
	"errors"
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/driftlabs/driftsync/internal/fsx"
	"github.com/driftlabs/driftsync/internal/remote"
	"github.com/driftlabs/driftsync/internal/store"
	"github.com/driftlabs/driftsync/internal/sync/cache"
	"github.com/driftlabs/driftsync/internal/sync/exclude"
	"github.com/driftlabs/driftsync/internal/sync/match"
	"github.com/driftlabs/driftsync/internal/sync/tree"
)

var (
	// ErrDisabled reports a run attempted on a disabled sync.
	ErrDisabled = errors.New("sync is disabled")

	// ErrRootChanged reports that the local root is no longer the
	// filesystem object recorded when the sync was configured. The sync
	// is disabled before this is returned.
	ErrRootChanged = errors.New("sync root changed identity")
)

// Engine runs the reconcile phase of configured syncs. Fields are set once
// before use; runs for a single config must not overlap.
type Engine struct {
	Cache      *cache.DB
	Remote     remote.Client // optional, enables remote seeding
	FS         fsx.FS
	Store      *store.DB
	DebrisName string
}

// Report summarizes one reconcile run.
type Report struct {
	Visited   int // live entries examined
	Matched   int // tracked entries that regained an identifier
	Unmatched int // tracked entries no live object claimed
	Skipped   int // live entries rejected by exclusions or the debris folder
}

// Run reconciles one sync: it verifies the root's recorded identity, loads
// the tracked tree (seeding it on first run), assigns live identifiers and
// persists the updated rows. When the assignment walk fails the cache is
// left at its previous state, so the next run starts from the same tracked
// baseline.
func (e *Engine) Run(ctx context.Context, cfg store.Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if !cfg.Enabled {
		return Report{}, fmt.Errorf("sync %s: %w", cfg.ID, ErrDisabled)
	}

	rootID, err := e.rootID(cfg.LocalPath)
	if err != nil {
		return Report{}, err
	}
	switch {
	case cfg.LocalFingerprint == 0:
		updated := cfg
		updated.LocalFingerprint = uint64(rootID)
		e.Store.Add(updated)
	case cfg.LocalFingerprint != uint64(rootID):
		updated := cfg
		updated.Enabled = false
		updated.LastError = store.FingerprintMismatch
		e.Store.Add(updated)
		log.WithFields(log.Fields{"id": cfg.ID, "path": cfg.LocalPath}).Warn("Sync root changed identity")
		return Report{}, fmt.Errorf("sync %s: %w", cfg.ID, ErrRootChanged)
	}

	policy := exclude.PolicyFor(cfg.LocalPath, e.DebrisName, exclude.New(cfg.Excludes))
	root, err := e.trackedTree(ctx, cfg, policy)
	if err != nil {
		return Report{}, err
	}

	rev := make(tree.FSIDMap)
	assigner := &match.Assigner{FS: e.FS, Policy: policy, DebrisName: e.DebrisName}
	if err := assigner.Assign(ctx, cfg.LocalPath, root, rev); err != nil {
		return Report{}, err
	}

	root.FSID = rootID
	if err := e.Cache.Replace(ctx, cfg.ID, rowsFromTree(cfg.ID, root)); err != nil {
		return Report{}, err
	}

	tracked := 0
	root.Walk(func(n *tree.Node) {
		if n.Parent != nil {
			tracked++
		}
	})
	return Report{
		Visited:   assigner.Stats.Visited,
		Matched:   len(rev),
		Unmatched: tracked - len(rev),
		Skipped:   assigner.Stats.Skipped,
	}, nil
}

// rootID reads the live filesystem identifier of the sync root.
func (e *Engine) rootID(rootPath string) (fsx.ID, error) {
	f, err := e.FS.Open(rootPath)
	if err != nil {
		return fsx.UnsetID, fmt.Errorf("open sync root %s: %w", rootPath, err)
	}
	id := f.ID()
	f.Close()
	if id == fsx.UnsetID {
		return fsx.UnsetID, fmt.Errorf("%s: filesystem identifier unavailable", rootPath)
	}
	return id, nil
}

// trackedTree loads the tracked entries for cfg, seeding them on first
// run: from the remote snapshot when the remote root is resolved, from the
// local disk otherwise.
func (e *Engine) trackedTree(ctx context.Context, cfg store.Config, policy *exclude.RootPolicy) (*tree.Node, error) {
	rows, err := e.Cache.List(ctx, cfg.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return treeFromRows(cfg.LocalPath, rows)
	}
	if cfg.RemoteID != "" && e.Remote != nil {
		log.WithField("id", cfg.ID).Info("Seeding tracked entries from remote snapshot")
		rn, err := e.Remote.Tree(ctx, cfg.RemoteID)
		if err != nil {
			return nil, fmt.Errorf("fetch remote tree %s: %w", cfg.RemoteID, err)
		}
		return treeFromRemote(cfg.LocalPath, rn), nil
	}
	log.WithField("id", cfg.ID).Info("Seeding tracked entries from local disk")
	return e.seedFromLocal(ctx, cfg.LocalPath, policy)
}

// treeFromRows rebuilds the tracked tree from cache rows ordered by
// relative path, so every parent directory precedes its contents. The root
// row is the empty relative path. Identifiers recorded by earlier runs are
// not restored; every run observes them fresh.
func treeFromRows(rootName string, rows []cache.Row) (*tree.Node, error) {
	root := tree.NewDir(rootName, tree.Fingerprint{})
	nodes := map[string]*tree.Node{"": root}
	for _, row := range rows {
		fp, err := row.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("cached entry %q: %w", row.RelPath, err)
		}
		if row.RelPath == "" {
			root.Fingerprint = fp
			continue
		}
		parentPath := path.Dir(row.RelPath)
		if parentPath == "." {
			parentPath = ""
		}
		parent := nodes[parentPath]
		if parent == nil || !parent.IsDir() {
			return nil, fmt.Errorf("cached entry %q has no parent directory", row.RelPath)
		}
		name := path.Base(row.RelPath)
		var n *tree.Node
		if row.IsDir {
			n = tree.NewDir(name, fp)
		} else {
			n = tree.NewFile(name, fp)
		}
		parent.AddChild(n)
		nodes[row.RelPath] = n
	}
	return root, nil
}

// rowsFromTree flattens the tracked tree into cache rows, root included as
// the empty relative path.
func rowsFromTree(configID string, root *tree.Node) []cache.Row {
	var rows []cache.Row
	root.Walk(func(n *tree.Node) {
		rows = append(rows, cache.Row{
			ConfigID: configID,
			RelPath:  n.RelPath(),
			IsDir:    n.IsDir(),
			Size:     n.Fingerprint.Size,
			MTime:    n.Fingerprint.MTime,
			CRC:      cache.EncodeCRC(n.Fingerprint.CRC),
			Valid:    n.Fingerprint.Valid,
			FSID:     n.FSID,
		})
	})
	return rows
}

// treeFromRemote converts a remote snapshot into a tracked tree rooted at
// rootName. Seeded file fingerprints carry size and mtime with zero
// content words; only empty live files can equal them.
func treeFromRemote(rootName string, rn *remote.Node) *tree.Node {
	root := tree.NewDir(rootName, tree.DirFingerprint(rn.MTime))
	addRemoteChildren(root, rn)
	return root
}

func addRemoteChildren(parent *tree.Node, rn *remote.Node) {
	for _, c := range rn.Children {
		if c.IsDir {
			addRemoteChildren(parent.AddChild(tree.NewDir(c.Name, tree.DirFingerprint(c.MTime))), c)
			continue
		}
		parent.AddChild(tree.NewFile(c.Name, tree.Fingerprint{Size: c.Size, MTime: c.MTime, Valid: true}))
	}
}

// seedFromLocal builds the first tracked tree for a sync with no cache and
// no resolved remote by fingerprinting the live tree itself. The
// assignment walk that follows re-observes the same entries.
func (e *Engine) seedFromLocal(ctx context.Context, rootPath string, policy *exclude.RootPolicy) (*tree.Node, error) {
	f, err := e.FS.Open(rootPath)
	if err != nil {
		return nil, fmt.Errorf("open sync root %s: %w", rootPath, err)
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rootPath, err)
	}
	root := tree.NewDir(rootPath, tree.DirFingerprint(info.MTime))
	if err := e.seedDir(ctx, rootPath, root, policy); err != nil {
		return nil, err
	}
	return root, nil
}

// seedDir fingerprints dirPath's entries into parent, recursing into
// subdirectories. Any failure aborts the seed.
func (e *Engine) seedDir(ctx context.Context, dirPath string, parent *tree.Node, policy *exclude.RootPolicy) error {
	dh, err := e.FS.OpenDir(dirPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dirPath, err)
	}
	var entries []fsx.Entry
	for {
		ent, ok := dh.Next()
		if !ok {
			break
		}
		entries = append(entries, ent)
	}
	dh.Close()

	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := path.Join(dirPath, ent.Name)
		if !policy.IsSyncable(p, ent.Dir) {
			continue
		}

		f, err := e.FS.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		if ent.Dir {
			info, err := f.Stat()
			f.Close()
			if err != nil {
				return fmt.Errorf("stat %s: %w", p, err)
			}
			sub := parent.AddChild(tree.NewDir(ent.Name, tree.DirFingerprint(info.MTime)))
			if err := e.seedDir(ctx, p, sub, policy); err != nil {
				return err
			}
			continue
		}
		fp, err := tree.FileFingerprint(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", p, err)
		}
		parent.AddChild(tree.NewFile(ent.Name, fp))
	}
	return nil
}
