package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reloadCmd)
}

var reloadCmd = &cobra.Command{
	Use:   "reload <component>",
	Short: "Disable and re-enable a component",
	Long: `Disable and re-enable a component. With smart-reload on (the default), the
components that depend on it are disabled first, in name order, and enabled
again afterwards, even when an intermediate step fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		res := s.coordinator().Reload(args[0])
		return printResult(cmd.OutOrStdout(), res, s.names())
	},
}
