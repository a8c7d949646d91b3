//go:build unix

package fsx

import (
	"os"

	"golang.org/x/sys/unix"
)

type osFS struct{}

// NewOS returns the production filesystem backed by the OS.
func NewOS() FS {
	return osFS{}
}

func (osFS) Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	var st unix.Stat_t
	id := UnsetID
	if err := unix.Fstat(int(f.Fd()), &st); err == nil {
		id = ID(st.Ino)
	}

	return &osFile{
		f:    f,
		info: Info{Size: fi.Size(), MTime: fi.ModTime().Unix()},
		id:   id,
	}, nil
}

func (osFS) OpenDir(path string) (Dir, error) {
	// Entries are read eagerly so the OS handle is released before the
	// caller starts opening children. os.ReadDir returns them sorted.
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(ents))
	for _, e := range ents {
		entries = append(entries, Entry{Name: e.Name(), Dir: e.IsDir()})
	}
	return &sliceDir{entries: entries}, nil
}

type osFile struct {
	f    *os.File
	info Info
	id   ID
}

func (f *osFile) ReadAt(p []byte, off int64) (int, error) { return f.f.ReadAt(p, off) }
func (f *osFile) Stat() (Info, error)                     { return f.info, nil }
func (f *osFile) ID() ID                                  { return f.id }
func (f *osFile) Close() error                            { return f.f.Close() }

type sliceDir struct {
	entries []Entry
	next    int
}

func (d *sliceDir) Next() (Entry, bool) {
	if d.next >= len(d.entries) {
		return Entry{}, false
	}
	e := d.entries[d.next]
	d.next++
	return e, true
}

func (d *sliceDir) Close() error { return nil }
