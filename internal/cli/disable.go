package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(disableCmd)
}

var disableCmd = &cobra.Command{
	Use:   "disable <component>",
	Short: "Disable an enabled component",
	Long: `Disable an enabled component. The hosting component can never be disabled.
Reserved platform components are protected unless allow-disable-core-components
is set, and a component that enabled components depend on is refused while
block-disable-with-dependents is on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		res := s.coordinator().Disable(args[0])
		return printResult(cmd.OutOrStdout(), res, s.names())
	},
}
