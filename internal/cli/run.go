package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/driftlabs/driftsync/internal/fsx"
	"github.com/driftlabs/driftsync/internal/remote"
	"github.com/driftlabs/driftsync/internal/store"
	syncengine "github.com/driftlabs/driftsync/internal/sync"
	"github.com/driftlabs/driftsync/internal/utils"
)

var runCmd = &cobra.Command{
	Use:   "run [config-id]",
	Short: "Reconcile syncs against the local filesystem",
	Long: `Reconcile one sync, or every enabled sync when no ID is given:
re-identify tracked entries on the live filesystem and persist the
updated state for the next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var runAccessToken string

func init() {
	runCmd.Flags().StringVar(&runAccessToken, "access-token", "",
		"OAuth access token for remote seeding (defaults to $DRIFTSYNC_ACCESS_TOKEN)")

	rootCmd.AddCommand(runCmd)
}

// runReport is one sync's reconcile outcome.
type runReport struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Visited   int    `json:"visited"`
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

type runReportList []runReport

func (runReportList) Headers() []string {
	return []string{"ID", "Name", "Visited", "Matched", "Unmatched", "Skipped", "Status"}
}

func (l runReportList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		status := "ok"
		if r.Error != "" {
			status = r.Error
		}
		rows = append(rows, []string{
			r.ID, r.Name,
			strconv.Itoa(r.Visited), strconv.Itoa(r.Matched),
			strconv.Itoa(r.Unmatched), strconv.Itoa(r.Skipped),
			status,
		})
	}
	return rows
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := NewOutputWriter(outputFormat, quiet)

	db, io, err := openStore()
	if err != nil {
		return err
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

	configs, err := selectConfigs(db, args)
	if err != nil {
		return err
	}

	var (
		reports runReportList
		failed  bool
	)
	for _, cfg := range configs {
		report, err := engine.Run(ctx, cfg)
		r := runReport{
			ID:        cfg.ID,
			Name:      cfg.Name,
			Visited:   report.Visited,
			Matched:   report.Matched,
			Unmatched: report.Unmatched,
			Skipped:   report.Skipped,
		}
		if err != nil {
			failed = true
			r.Error = err.Error()
			log.WithError(err).WithField("id", cfg.ID).Error("Reconcile failed")
		}
		reports = append(reports, r)
	}

	if err := flushStore(ctx, db, io); err != nil {
		return err
	}
	if err := out.WriteSuccess("run", reports); err != nil {
		return err
	}
	if failed {
		return utils.NewCLIError(utils.ErrCodeSyncFailed, "one or more syncs failed to reconcile", utils.ExitSyncFailed)
	}
	return nil
}

// selectConfigs picks the sync named by args, or every enabled sync.
func selectConfigs(db *store.DB, args []string) ([]store.Config, error) {
	if len(args) == 1 {
		cfg := db.Get(args[0])
		if cfg == nil {
			return nil, utils.NewCLIError(utils.ErrCodeNotFound,
				fmt.Sprintf("sync config %s not found", args[0]), utils.ExitNotFound)
		}
		return []store.Config{*cfg}, nil
	}

	var configs []store.Config
	for _, cfg := range db.Configs() {
		if cfg.Enabled {
			configs = append(configs, cfg)
		}
	}
	if len(configs) == 0 {
		return nil, utils.NewCLIError(utils.ErrCodeNotFound, "no enabled sync configs", utils.ExitNotFound)
	}
	return configs, nil
}

// remoteClient builds the Drive-backed remote when a token is available.
// Without one, first runs seed tracked state from the local disk instead.
func remoteClient(ctx context.Context) remote.Client {
	token := runAccessToken
	if token == "" {
		token = os.Getenv("DRIFTSYNC_ACCESS_TOKEN")
	}
	if token == "" {
		return nil
	}
	client, err := remote.NewDriveClient(ctx, remote.Credentials{AccessToken: token})
	if err != nil {
		log.WithError(err).Warn("Remote unavailable, seeding locally")
		return nil
	}
	return client
}
