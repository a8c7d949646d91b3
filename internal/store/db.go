// Package store keeps the set of configured syncs and persists it through
// rotating encrypted slot files, so one corrupted write never loses the
// whole database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const numSlots = 2

var (
	ErrNotFound = errors.New("sync config not found")
	ErrNoSlots  = errors.New("no sync config database found")
)

// DB is the in-memory sync config database backed by one directory of slot
// files. It is not safe for concurrent use; callers serialize access.
type DB struct {
	dir      string
	obs      Observer
	configs  map[string]*Config
	order    []string
	byRemote map[string]string
	slot     uint32
	dirty    bool
}

func NewDB(dir string, obs Observer) *DB {
	if obs == nil {
		obs = nopObserver{}
	}
	return &DB{
		dir:      dir,
		obs:      obs,
		configs:  make(map[string]*Config),
		byRemote: make(map[string]string),
	}
}

func (db *DB) Dir() string { return db.dir }

// Dirty reports whether the database has mutations not yet written out.
func (db *DB) Dirty() bool { return db.dirty }

func (db *DB) Len() int { return len(db.order) }

// Add inserts a config or updates the entry sharing its ID. The returned
// pointer stays valid for the lifetime of the database. Re-adding an equal
// config is a no-op and raises no notifications.
func (db *DB) Add(c Config) *Config {
	c.Normalize()
	if cur, ok := db.configs[c.ID]; ok {
		if cur.Equal(c) {
			return cur
		}
		old := *cur
		db.unindex(old)
		*cur = c
		db.index(cur)
		db.dirty = true
		db.obs.OnChange(db, old, cur)
		db.obs.OnDirty(db)
		return cur
	}

	added := db.insert(c)
	db.dirty = true
	db.obs.OnAdd(db, added)
	db.obs.OnDirty(db)
	return added
}

// Get returns the config with the given ID, or nil. Callers treat the result
// as read-only; mutations go through Add.
func (db *DB) Get(id string) *Config { return db.configs[id] }

// GetByRemote returns the config bound to the given remote root identifier.
// An empty identifier never resolves.
func (db *DB) GetByRemote(remoteID string) *Config {
	if remoteID == "" {
		return nil
	}
	id, ok := db.byRemote[remoteID]
	if !ok {
		return nil
	}
	return db.configs[id]
}

func (db *DB) Remove(id string) error {
	if _, ok := db.configs[id]; !ok {
		return ErrNotFound
	}
	c := db.takeOut(id)
	db.dirty = true
	db.obs.OnRemove(db, *c)
	db.obs.OnDirty(db)
	return nil
}

func (db *DB) RemoveByRemote(remoteID string) error {
	if remoteID == "" {
		return ErrNotFound
	}
	id, ok := db.byRemote[remoteID]
	if !ok {
		return ErrNotFound
	}
	return db.Remove(id)
}

// Configs returns all configs in insertion order.
func (db *DB) Configs() []Config {
	out := make([]Config, 0, len(db.order))
	for _, id := range db.order {
		out = append(out, *db.configs[id])
	}
	return out
}

// Clear removes every config, notifying one removal per entry followed by a
// single dirty notification. Clearing an empty database does nothing.
func (db *DB) Clear() {
	if len(db.order) == 0 {
		return
	}
	for _, id := range append([]string(nil), db.order...) {
		c := db.takeOut(id)
		db.obs.OnRemove(db, *c)
	}
	db.dirty = true
	db.obs.OnDirty(db)
}

// Close drops every config, notifying removals but no dirty state. The
// database is empty afterwards and may be read into again.
func (db *DB) Close() {
	for _, id := range append([]string(nil), db.order...) {
		c := db.takeOut(id)
		db.obs.OnRemove(db, *c)
	}
}

// Read loads the newest readable slot and merges it into memory, raising
// add/change/remove notifications for the differences. It never marks the
// database dirty. ErrNoSlots means the directory holds no database at all.
func (db *DB) Read(io *IOContext) error {
	slots, err := io.Slots(db.dir)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return ErrNoSlots
	}

	var lastErr error
	for _, s := range slots {
		configs, err := db.readSlot(io, s)
		if err != nil {
			log.WithError(err).WithField("dir", db.dir).Warn("Skipping unreadable sync config slot")
			lastErr = err
			continue
		}
		db.slot = (s + 1) % numSlots
		db.merge(configs)
		return nil
	}
	return lastErr
}

// Write persists the current configs into the next slot. On success the
// slot advances and the dirty flag clears; on failure both are left alone so
// the next attempt targets the same slot.
func (db *DB) Write(io *IOContext) error {
	data, err := json.Marshal(db.Configs())
	if err != nil {
		return fmt.Errorf("encode sync configs: %w", err)
	}
	if err := io.Write(db.dir, data, db.slot); err != nil {
		return err
	}
	db.slot = (db.slot + 1) % numSlots
	db.dirty = false
	return nil
}

func (db *DB) readSlot(io *IOContext, slot uint32) ([]Config, error) {
	data, err := io.Read(db.dir, slot)
	if err != nil {
		return nil, err
	}
	var configs []Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("slot %d: decode sync configs: %w", slot, err)
	}
	return configs, nil
}

func (db *DB) merge(incoming []Config) {
	seen := make(map[string]bool, len(incoming))
	for _, c := range incoming {
		c.Normalize()
		seen[c.ID] = true
		cur, ok := db.configs[c.ID]
		if !ok {
			db.obs.OnAdd(db, db.insert(c))
			continue
		}
		if cur.Equal(c) {
			continue
		}
		old := *cur
		db.unindex(old)
		*cur = c
		db.index(cur)
		db.obs.OnChange(db, old, cur)
	}

	for _, id := range append([]string(nil), db.order...) {
		if !seen[id] {
			c := db.takeOut(id)
			db.obs.OnRemove(db, *c)
		}
	}
}

func (db *DB) insert(c Config) *Config {
	added := &c
	db.configs[c.ID] = added
	db.order = append(db.order, c.ID)
	db.index(added)
	return added
}

func (db *DB) takeOut(id string) *Config {
	c := db.configs[id]
	delete(db.configs, id)
	db.unindex(*c)
	for i, v := range db.order {
		if v == id {
			db.order = append(db.order[:i], db.order[i+1:]...)
			break
		}
	}
	return c
}

func (db *DB) index(c *Config) {
	if c.RemoteID != "" {
		db.byRemote[c.RemoteID] = c.ID
	}
}

func (db *DB) unindex(c Config) {
	if c.RemoteID != "" && db.byRemote[c.RemoteID] == c.ID {
		delete(db.byRemote, c.RemoteID)
	}
}
