package cli

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/driftlabs/driftsync/internal/store"
	"github.com/driftlabs/driftsync/internal/utils"
)

var removeCmd = &cobra.Command{
	Use:   "remove <config-id>",
	Short: "Remove a sync configuration",
	Long: `Remove a sync configuration. With --remote the argument is the remote
root identifier the sync is bound to instead of its ID. --purge also
drops the sync's cached tracked state; removing the last configuration
with --purge deletes the config database files as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

var (
	removeByRemote bool
	removePurge    bool
)

func init() {
	removeCmd.Flags().BoolVar(&removeByRemote, "remote", false, "Treat the argument as a remote root identifier")
	removeCmd.Flags().BoolVar(&removePurge, "purge", false, "Also drop cached tracked state")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := NewOutputWriter(outputFormat, quiet)

	db, io, err := openStore()
	if err != nil {
		return err
	}

	cfg := db.Get(args[0])
	if removeByRemote {
		cfg = db.GetByRemote(args[0])
	}
	if cfg == nil {
		return utils.NewCLIError(utils.ErrCodeNotFound, store.ErrNotFound.Error(), utils.ExitNotFound)
	}
	removed := *cfg
	if err := db.Remove(removed.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NewCLIError(utils.ErrCodeNotFound, err.Error(), utils.ExitNotFound)
		}
		return err
	}

	if removePurge {
		cacheDB, err := openCache()
		if err != nil {
			return err
		}
		defer cacheDB.Close()
		if err := cacheDB.Delete(ctx, removed.ID); err != nil {
			return err
		}
	}

	if removePurge && db.Len() == 0 {
		// Nothing left to persist; drop the slot files so the store
		// reads back as never written.
		if err := io.Remove(db.Dir()); err != nil {
			return utils.NewCLIError(utils.ErrCodeStoreWrite, err.Error(), utils.ExitStoreWrite)
		}
	} else if err := flushStore(ctx, db, io); err != nil {
		return err
	}

	log.WithFields(log.Fields{"id": removed.ID, "path": removed.LocalPath}).Info("Removed sync config")
	out.WriteMessage("Removed sync %s (%s)", removed.ID, removed.Name)
	return out.WriteSuccess("remove", configList{removed})
}
