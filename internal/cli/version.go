package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/branding"
)

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print the version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build information as JSON")
	rootCmd.AddCommand(versionCmd)
}

type versionReport struct {
	BuildInfo
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch {
	case versionShort:
		fmt.Fprintln(out, build.Version)
	case versionJSON:
		data, err := json.MarshalIndent(versionReport{
			BuildInfo: build,
			Go:        runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding build info: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		fmt.Fprintf(out, "%s %s (%s, built %s, %s)\n",
			branding.CLIName(), build.Version, build.Commit, build.Date, runtime.Version())
	}
	return nil
}
