package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrSlotRead marks a slot that exists but cannot be read back, whether the
// file is unreadable or its payload fails to open.
var ErrSlotRead = errors.New("read sync config slot")

// Cipher seals sync config payloads before they reach disk and opens them on
// the way back. The keys package provides the production implementation.
type Cipher interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(sealed []byte) ([]byte, error)
}

// IOContext performs slot-file IO for a DB. A database directory holds up to
// numSlots files named "<name>.<slot>"; writers rotate through the slots so a
// torn write never destroys the previous good generation.
type IOContext struct {
	fs     afero.Fs
	cipher Cipher
	name   string
}

func NewIOContext(fs afero.Fs, cipher Cipher, name string) *IOContext {
	return &IOContext{fs: fs, cipher: cipher, name: name}
}

// Slots lists the slot numbers present in dir, newest first. Files that do
// not carry the "<name>.<decimal>" shape are ignored. A missing directory is
// an empty list, not an error.
func (c *IOContext) Slots(dir string) ([]uint32, error) {
	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	type slotFile struct {
		slot  uint32
		mtime time.Time
	}
	prefix := c.name + "."
	var found []slotFile
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), prefix) {
			continue
		}
		n, err := strconv.ParseUint(info.Name()[len(prefix):], 10, 32)
		if err != nil {
			continue
		}
		found = append(found, slotFile{slot: uint32(n), mtime: info.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].mtime.Equal(found[j].mtime) {
			return found[i].mtime.After(found[j].mtime)
		}
		return found[i].slot > found[j].slot
	})

	slots := make([]uint32, 0, len(found))
	for _, f := range found {
		slots = append(slots, f.slot)
	}
	return slots, nil
}

// Read loads and opens the payload stored in the given slot.
func (c *IOContext) Read(dir string, slot uint32) ([]byte, error) {
	sealed, err := afero.ReadFile(c.fs, c.slotPath(dir, slot))
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrSlotRead, slot, err)
	}
	data, err := c.cipher.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrSlotRead, slot, err)
	}
	return data, nil
}

// Write seals data into the given slot. The database directory must already
// exist; Write never creates it.
func (c *IOContext) Write(dir string, data []byte, slot uint32) (err error) {
	if _, err := c.fs.Stat(dir); err != nil {
		return fmt.Errorf("database directory %s: %w", dir, err)
	}
	sealed, err := c.cipher.Encrypt(data)
	if err != nil {
		return fmt.Errorf("seal sync configs: %w", err)
	}

	f, err := c.fs.OpenFile(c.slotPath(dir, slot), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err = f.Write(sealed); err != nil {
		return err
	}
	return f.Sync()
}

// Remove deletes every slot file in dir. Used when a database is purged.
func (c *IOContext) Remove(dir string) error {
	slots, err := c.Slots(dir)
	if err != nil {
		return err
	}
	for _, s := range slots {
		if err := c.fs.Remove(c.slotPath(dir, s)); err != nil {
			return err
		}
	}
	return nil
}

func (c *IOContext) slotPath(dir string, slot uint32) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%d", c.name, slot))
}
