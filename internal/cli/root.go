package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftlabs/driftsync/internal/config"
	"github.com/driftlabs/driftsync/internal/logging"
	"github.com/driftlabs/driftsync/internal/utils"
	"github.com/driftlabs/driftsync/pkg/version"
)

var (
	outputFormat string
	quiet        bool
	verbose      bool
	logFile      string

	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "driftsync",
	Short: "Encrypted cloud-storage sync client",
	Long: `driftsync keeps local folders in sync with a remote storage service.
It re-identifies moved and renamed files after restarts using content
fingerprints, and stores its sync configuration encrypted on disk.

All commands support JSON output for automation and scripting.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateGlobalFlags(); err != nil {
			return err
		}

		cfg, err := config.Parse()
		if err != nil {
			return utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error(), utils.ExitConfigInvalid)
		}
		appConfig = cfg

		level := appConfig.LogLevel
		if verbose {
			level = "debug"
		} else if quiet {
			level = "error"
		}
		if err := logging.Setup(level, logFile); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "Print the version number of driftsync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", outputFormatTable, "Output format (json, table)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")

	rootCmd.AddCommand(versionCmd)
}

func validateGlobalFlags() error {
	if outputFormat != outputFormatJSON && outputFormat != outputFormatTable {
		return utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid output format: %s", outputFormat), utils.ExitInvalidArgument)
	}
	return nil
}

// Execute runs the root command and exits the process on failure.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(utils.ExitCodeForError(err))
	}
	return nil
}
