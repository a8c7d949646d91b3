//go:build !unix

package fsx

import "errors"

// ErrUnsupported reports that the host platform exposes no filesystem
// identifiers the reconciler can use.
var ErrUnsupported = errors.New("filesystem identifiers are not supported on this platform")

// NewOS returns the production filesystem. Identity matching needs stable
// per-object identifiers (inode numbers), which only the unix backend
// provides; on other platforms every operation fails with ErrUnsupported.
func NewOS() FS {
	return unsupportedFS{}
}

type unsupportedFS struct{}

func (unsupportedFS) Open(path string) (File, error)   { return nil, ErrUnsupported }
func (unsupportedFS) OpenDir(path string) (Dir, error) { return nil, ErrUnsupported }
