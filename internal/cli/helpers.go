package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/driftlabs/driftsync/internal/keys"
	"github.com/driftlabs/driftsync/internal/retry"
	"github.com/driftlabs/driftsync/internal/store"
	"github.com/driftlabs/driftsync/internal/sync/cache"
	"github.com/driftlabs/driftsync/internal/utils"
)

// openStore loads the sync config database from the state directory. A
// state directory with no slot files yields an empty database, not an
// error.
func openStore() (*store.DB, *store.IOContext, error) {
	if err := os.MkdirAll(appConfig.StateDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create state directory: %w", err)
	}

	km, err := keys.NewManager(keys.Options{StateDir: appConfig.StateDir})
	if err != nil {
		return nil, nil, utils.NewCLIError(utils.ErrCodeKeyUnavailable, err.Error(), utils.ExitKeyUnavailable)
	}
	cipher, err := km.ForPurpose(utils.CipherPurposeStore)
	if err != nil {
		return nil, nil, utils.NewCLIError(utils.ErrCodeKeyUnavailable, err.Error(), utils.ExitKeyUnavailable)
	}

	io := store.NewIOContext(afero.NewOsFs(), cipher, utils.StoreName)
	db := store.NewDB(appConfig.StateDir, nil)
	if err := db.Read(io); err != nil {
		if errors.Is(err, store.ErrNoSlots) {
			log.WithField("dir", appConfig.StateDir).Debug("No sync config database yet")
			return db, io, nil
		}
		return nil, nil, utils.NewCLIError(utils.ErrCodeStoreRead, err.Error(), utils.ExitStoreRead)
	}
	return db, io, nil
}

// flushStore writes the database out if it has pending mutations. Writes
// are retried; persistent failure keeps the dirty flag set.
func flushStore(ctx context.Context, db *store.DB, io *store.IOContext) error {
	if !db.Dirty() {
		return nil
	}
	err := retry.WithOperation(ctx, retry.StoreDefaults(), func() error {
		return db.Write(io)
	}, "write sync configs")
	if err != nil {
		return utils.NewCLIError(utils.ErrCodeStoreWrite, err.Error(), utils.ExitStoreWrite)
	}
	return nil
}

// openCache opens the tracked-node statecache under the state directory.
func openCache() (*cache.DB, error) {
	return cache.Open(appConfig.CachePath())
}
