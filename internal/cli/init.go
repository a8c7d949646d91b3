package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/driftlabs/driftsync/internal/store"
	"github.com/driftlabs/driftsync/internal/utils"
)

var initCmd = &cobra.Command{
	Use:   "init <local-path> [remote-root-id]",
	Short: "Initialize a sync configuration",
	Long: `Initialize a sync configuration pairing a local folder with a remote
root. The remote root identifier may be omitted and bound later; until
then the first run seeds tracked state from the local folder.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInit,
}

var (
	initName          string
	initID            string
	initExclude       string
	initDirection     string
	initSyncDeletions bool
	initOverwrite     bool
	initDisabled      bool
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Display name (defaults to the folder name)")
	initCmd.Flags().StringVar(&initID, "id", "", "Optional sync configuration ID")
	initCmd.Flags().StringVar(&initExclude, "exclude", "", "Comma-separated exclude patterns")
	initCmd.Flags().StringVar(&initDirection, "direction", "two-way", "Sync direction (two-way, up, down)")
	initCmd.Flags().BoolVar(&initSyncDeletions, "sync-deletions", false, "Propagate deletions (one-way syncs)")
	initCmd.Flags().BoolVar(&initOverwrite, "force-overwrite", false, "Overwrite conflicting files (one-way syncs)")
	initCmd.Flags().BoolVar(&initDisabled, "disabled", false, "Create the sync disabled")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := NewOutputWriter(outputFormat, quiet)

	localPath, err := filepath.Abs(args[0])
	if err != nil {
		return utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error(), utils.ExitInvalidArgument)
	}
	remoteID := ""
	if len(args) > 1 {
		remoteID = args[1]
	}

	direction, err := parseDirection(initDirection)
	if err != nil {
		return utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error(), utils.ExitInvalidArgument)
	}

	cfg := store.Config{
		ID:             initID,
		Name:           initName,
		LocalPath:      localPath,
		RemoteID:       remoteID,
		Enabled:        !initDisabled,
		Direction:      direction,
		SyncDeletions:  initSyncDeletions,
		ForceOverwrite: initOverwrite,
		Excludes:       splitPatterns(initExclude),
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.Name == "" {
		cfg.Name = filepath.Base(localPath)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error(), utils.ExitInvalidArgument)
	}

	db, io, err := openStore()
	if err != nil {
		return err
	}
	if existing := db.Get(cfg.ID); existing != nil {
		return utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("sync config %s already exists", cfg.ID), utils.ExitInvalidArgument)
	}
	if remoteID != "" {
		if bound := db.GetByRemote(remoteID); bound != nil {
			return utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("remote root %s is already bound to sync %s", remoteID, bound.ID),
				utils.ExitInvalidArgument)
		}
	}

	added := db.Add(cfg)
	if err := flushStore(ctx, db, io); err != nil {
		return err
	}

	out.WriteMessage("Created sync %s (%s)", added.ID, added.Name)
	return out.WriteSuccess("init", configList{*added})
}

func parseDirection(value string) (store.Direction, error) {
	switch strings.ToLower(value) {
	case "two-way", "twoway", "bidirectional":
		return store.TwoWay, nil
	case "up", "upload":
		return store.Up, nil
	case "down", "download":
		return store.Down, nil
	default:
		return 0, fmt.Errorf("invalid sync direction %q", value)
	}
}

func splitPatterns(value string) []string {
	if value == "" {
		return nil
	}
	var patterns []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
