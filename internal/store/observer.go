package store

// Observer receives change notifications from a DB. OnDirty fires after any
// mutation made through the public API; reading slots back from disk raises
// the add/change/remove callbacks but never OnDirty.
type Observer interface {
	OnAdd(db *DB, c *Config)
	OnChange(db *DB, old Config, updated *Config)
	OnRemove(db *DB, c Config)
	OnDirty(db *DB)
}

type nopObserver struct{}

func (nopObserver) OnAdd(*DB, *Config) {}

func (nopObserver) OnChange(*DB, Config, *Config) {}

func (nopObserver) OnRemove(*DB, Config) {}

func (nopObserver) OnDirty(*DB) {}
