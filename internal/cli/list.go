package cli

import (
	"github.com/spf13/cobra"

	"github.com/driftlabs/driftsync/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sync configurations",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// configList renders sync configs as a table.
type configList []store.Config

func (configList) Headers() []string {
	return []string{"ID", "Name", "Local Path", "Remote", "Direction", "Enabled", "Last Error"}
}

func (l configList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		enabled := "no"
		if c.Enabled {
			enabled = "yes"
		}
		lastError := ""
		if c.LastError != store.NoError {
			lastError = c.LastError.String()
		}
		rows = append(rows, []string{c.ID, c.Name, c.LocalPath, c.RemoteID, c.Direction.String(), enabled, lastError})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	out := NewOutputWriter(outputFormat, quiet)

	db, _, err := openStore()
	if err != nil {
		return err
	}
	return out.WriteSuccess("list", configList(db.Configs()))
}
