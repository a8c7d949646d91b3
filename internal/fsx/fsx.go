// Package fsx abstracts the filesystem operations the reconcile walk needs:
// opening an entry for metadata and sampled reads, enumerating a directory,
// and reading the platform filesystem identifier. The sync engine depends
// only on these interfaces so it can run against a fake tree in tests.
package fsx

import "io"

// ID identifies a filesystem object (an inode on unix). IDs are stable
// across renames within a mount session. The zero value means the identifier
// is unknown or could not be read.
type ID uint64

// UnsetID is the zero, not-yet-assigned identifier.
const UnsetID ID = 0

// Info carries the metadata the fingerprinting code needs.
type Info struct {
	Size  int64
	MTime int64 // unix seconds
}

// File is an open handle to a file or directory. ReadAt is only meaningful
// for regular files; directories support Stat and ID.
type File interface {
	io.ReaderAt
	Stat() (Info, error)
	ID() ID
	Close() error
}

// Entry is one directory member as reported during enumeration.
type Entry struct {
	Name string
	Dir  bool
}

// Dir enumerates a directory's entries in a stable order.
type Dir interface {
	// Next returns the next entry, or ok=false when exhausted.
	Next() (e Entry, ok bool)
	Close() error
}

// FS opens files and directories by path. Open works on directories too
// (metadata only). All failures are returned as errors, never panics.
type FS interface {
	Open(path string) (File, error)
	OpenDir(path string) (Dir, error)
}
