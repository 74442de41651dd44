package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable <component>",
	Short: "Enable an installed component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		res := s.coordinator().Enable(args[0])
		return printResult(cmd.OutOrStdout(), res, s.names())
	},
}
