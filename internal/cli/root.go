package cli

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/branding"
	"github.com/plugmgr/plugmgr/internal/config"
	"github.com/plugmgr/plugmgr/internal/logging"
	"github.com/plugmgr/plugmgr/internal/metrics"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var build = BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"}

var (
	verbose         bool
	metricsTextfile string
	log             = logr.Discard()
)

// errReported is returned by commands that have already printed why they
// failed; Execute exits non-zero without printing it again.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` enables, disables, reloads and installs components of a host,
respecting the dependencies they declare on each other.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			// The config commands must stay usable to repair a bad value.
			if !errors.Is(err, config.ErrInvalidValue) || cmd.Parent() != configCmd {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: "+err.Error()))
		}
		l, err := logging.New(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if metricsTextfile == "" {
			return nil
		}
		return metrics.WriteTextfile(metricsTextfile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every registry call")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write prometheus metrics to this file after the command")
}

// Run executes the command line and returns the process exit code.
func Run(info BuildInfo) int {
	build = info
	if err := execute(); err != nil {
		return 1
	}
	return 0
}

func execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), errStyle.Render("Error: "+err.Error()))
	}
	return err
}
