package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/driftlabs/driftsync/internal/fswatch"
	"github.com/driftlabs/driftsync/internal/fsx"
	syncengine "github.com/driftlabs/driftsync/internal/sync"
	"github.com/driftlabs/driftsync/internal/sync/exclude"
	"github.com/driftlabs/driftsync/internal/utils"
)

var watchCmd = &cobra.Command{
	Use:   "watch <config-id>",
	Short: "Watch a sync's local folder and reconcile on changes",
	Long: `Watch the sync's local folder for filesystem activity and reconcile
once each burst of changes settles. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchDebounce int

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", utils.DefaultDebounceSeconds,
		"Seconds of quiet before a change burst triggers a reconcile")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	out := NewOutputWriter(outputFormat, quiet)

	db, io, err := openStore()
	if err != nil {
		return err
	}
	cfg := db.Get(args[0])
	if cfg == nil {
		return utils.NewCLIError(utils.ErrCodeNotFound, "sync config not found", utils.ExitNotFound)
	}
	cacheDB, err := openCache()
	if err != nil {
		return err
	}
	defer cacheDB.Close()

	engine := &syncengine.Engine{
		Cache:      cacheDB,
		Remote:     remoteClient(ctx),
		FS:         fsx.NewOS(),
		Store:      db,
		DebrisName: appConfig.DebrisName,
	}

	policy := exclude.PolicyFor(cfg.LocalPath, appConfig.DebrisName, exclude.New(cfg.Excludes))
	watcher, err := fswatch.Watch(cfg.LocalPath, policy)
	if err != nil {
		return err
	}
	defer watcher.Close()

	triggers := fswatch.Debounce(clockwork.NewRealClock(), watcher.Updates,
		time.Duration(watchDebounce)*time.Second)

	out.WriteMessage("Watching %s (sync %s), Ctrl-C to stop", cfg.LocalPath, cfg.ID)
	for {
		select {
		case <-ctx.Done():
			return flushStore(context.Background(), db, io)
		case _, ok := <-triggers:
			if !ok {
				return flushStore(context.Background(), db, io)
			}
			current := db.Get(cfg.ID)
			if current == nil || !current.Enabled {
				log.WithField("id", cfg.ID).Warn("Sync no longer runnable, stopping watch")
				return flushStore(context.Background(), db, io)
			}
			report, err := engine.Run(ctx, *current)
			if err != nil {
				log.WithError(err).WithField("id", cfg.ID).Error("Reconcile failed")
			} else {
				log.WithFields(log.Fields{
					"id":      cfg.ID,
					"visited": report.Visited,
					"matched": report.Matched,
					"skipped": report.Skipped,
				}).Info("Reconciled after change burst")
			}
			if err := flushStore(ctx, db, io); err != nil {
				log.WithError(err).Warn("Deferring sync config write")
			}
		}
	}
}
