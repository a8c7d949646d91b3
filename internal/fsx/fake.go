package fsx

import (
	"bytes"
	"os"
	"strings"
)

// FakeFS is an in-memory FS for tests. It hands out deterministic IDs,
// records how many handles are open at once, and can be told to fail
// opens or report invalid IDs for specific paths. Not safe for concurrent
// use; the reconcile walk is single-threaded by contract.
type FakeFS struct {
	root      *fakeNode
	nextID    ID
	failOpen  map[string]bool
	failDir   map[string]bool
	invalidID map[string]bool

	live int
	max  int
}

type fakeNode struct {
	name     string
	dir      bool
	data     []byte
	mtime    int64
	id       ID
	children []*fakeNode
}

// NewFakeFS returns an empty fake filesystem rooted at "/".
func NewFakeFS() *FakeFS {
	f := &FakeFS{
		nextID:    1,
		failOpen:  make(map[string]bool),
		failDir:   make(map[string]bool),
		invalidID: make(map[string]bool),
	}
	f.root = &fakeNode{dir: true, id: f.alloc()}
	return f
}

func (f *FakeFS) alloc() ID {
	id := f.nextID
	f.nextID++
	return id
}

// MkdirAll creates a directory and any missing parents, all with the given
// mtime. Existing directories are left untouched. Panics if a path element
// is already a file; that is a broken test setup.
func (f *FakeFS) MkdirAll(path string, mtime int64) {
	node := f.root
	for _, part := range splitPath(path) {
		child := node.child(part)
		if child == nil {
			child = &fakeNode{name: part, dir: true, mtime: mtime, id: f.alloc()}
			node.children = append(node.children, child)
		} else if !child.dir {
			panic("fsx: MkdirAll over file " + path)
		}
		node = child
	}
}

// WriteFile creates or replaces a file, creating parents as needed.
// Replacing keeps the node's ID (same object, new content).
func (f *FakeFS) WriteFile(path string, data []byte, mtime int64) {
	parts := splitPath(path)
	if len(parts) == 0 {
		panic("fsx: WriteFile with empty path")
	}
	dir, name := parts[:len(parts)-1], parts[len(parts)-1]
	node := f.root
	for _, part := range dir {
		child := node.child(part)
		if child == nil {
			child = &fakeNode{name: part, dir: true, mtime: mtime, id: f.alloc()}
			node.children = append(node.children, child)
		}
		node = child
	}
	if existing := node.child(name); existing != nil {
		if existing.dir {
			panic("fsx: WriteFile over directory " + path)
		}
		existing.data = append([]byte(nil), data...)
		existing.mtime = mtime
		return
	}
	node.children = append(node.children, &fakeNode{
		name:  name,
		data:  append([]byte(nil), data...),
		mtime: mtime,
		id:    f.alloc(),
	})
}

// SetMTime adjusts an existing entry's modification time.
func (f *FakeFS) SetMTime(path string, mtime int64) {
	f.mustLookup(path).mtime = mtime
}

// Rename moves an entry to a new path, keeping its ID, content and mtime.
// Destination parents must already exist and be directories.
func (f *FakeFS) Rename(oldPath, newPath string) {
	node := f.mustLookup(oldPath)
	oldParts := splitPath(oldPath)
	if len(oldParts) == 0 {
		panic("fsx: Rename of root")
	}
	oldParent := f.root
	if len(oldParts) > 1 {
		oldParent = f.mustLookup(strings.Join(oldParts[:len(oldParts)-1], "/"))
	}
	for i, c := range oldParent.children {
		if c == node {
			oldParent.children = append(oldParent.children[:i], oldParent.children[i+1:]...)
			break
		}
	}

	newParts := splitPath(newPath)
	if len(newParts) == 0 {
		panic("fsx: Rename to empty path")
	}
	newParent := f.root
	if len(newParts) > 1 {
		newParent = f.mustLookup(strings.Join(newParts[:len(newParts)-1], "/"))
	}
	if !newParent.dir {
		panic("fsx: Rename into file " + newPath)
	}
	node.name = newParts[len(newParts)-1]
	newParent.children = append(newParent.children, node)
}

// FailOpen makes Open fail for the given path.
func (f *FakeFS) FailOpen(path string) { f.failOpen[clean(path)] = true }

// FailOpenDir makes OpenDir fail for the given path.
func (f *FakeFS) FailOpenDir(path string) { f.failDir[clean(path)] = true }

// SetInvalidID makes handles for the given path report UnsetID.
func (f *FakeFS) SetInvalidID(path string) { f.invalidID[clean(path)] = true }

// PathID returns the ID the fake assigned to a path. Panics when missing.
func (f *FakeFS) PathID(path string) ID { return f.mustLookup(path).id }

// LiveHandles reports how many handles are currently open.
func (f *FakeFS) LiveHandles() int { return f.live }

// MaxHandles reports the highest number of simultaneously open handles seen.
func (f *FakeFS) MaxHandles() int { return f.max }

func (f *FakeFS) Open(path string) (File, error) {
	p := clean(path)
	if f.failOpen[p] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}
	node := f.lookup(p)
	if node == nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	id := node.id
	if f.invalidID[p] {
		id = UnsetID
	}
	f.acquire()
	return &fakeFile{fs: f, node: node, id: id}, nil
}

func (f *FakeFS) OpenDir(path string) (Dir, error) {
	p := clean(path)
	if f.failDir[p] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}
	node := f.lookup(p)
	if node == nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	if !node.dir {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	entries := make([]Entry, 0, len(node.children))
	for _, c := range node.children {
		entries = append(entries, Entry{Name: c.name, Dir: c.dir})
	}
	f.acquire()
	return &fakeDir{fs: f, entries: entries}, nil
}

func (f *FakeFS) acquire() {
	f.live++
	if f.live > f.max {
		f.max = f.live
	}
}

func (f *FakeFS) release() {
	f.live--
}

func (f *FakeFS) lookup(cleaned string) *fakeNode {
	node := f.root
	if cleaned == "" {
		return node
	}
	for _, part := range strings.Split(cleaned, "/") {
		node = node.child(part)
		if node == nil {
			return nil
		}
	}
	return node
}

func (f *FakeFS) mustLookup(path string) *fakeNode {
	node := f.lookup(clean(path))
	if node == nil {
		panic("fsx: no such fake path " + path)
	}
	return node
}

func (n *fakeNode) child(name string) *fakeNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

func splitPath(path string) []string {
	p := clean(path)
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

type fakeFile struct {
	fs     *FakeFS
	node   *fakeNode
	id     ID
	closed bool
}

func (f *fakeFile) ReadAt(p []byte, off int64) (int, error) {
	if f.node.dir {
		return 0, &os.PathError{Op: "read", Path: f.node.name, Err: os.ErrInvalid}
	}
	return bytes.NewReader(f.node.data).ReadAt(p, off)
}

func (f *fakeFile) Stat() (Info, error) {
	size := int64(len(f.node.data))
	if f.node.dir {
		size = 0
	}
	return Info{Size: size, MTime: f.node.mtime}, nil
}

func (f *fakeFile) ID() ID { return f.id }

func (f *fakeFile) Close() error {
	if !f.closed {
		f.closed = true
		f.fs.release()
	}
	return nil
}

type fakeDir struct {
	fs      *FakeFS
	entries []Entry
	next    int
	closed  bool
}

func (d *fakeDir) Next() (Entry, bool) {
	if d.next >= len(d.entries) {
		return Entry{}, false
	}
	e := d.entries[d.next]
	d.next++
	return e, true
}

func (d *fakeDir) Close() error {
	if !d.closed {
		d.closed = true
		d.fs.release()
	}
	return nil
}
