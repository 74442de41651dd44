package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listenersCmd = &cobra.Command{
	Use:   "listeners <component>",
	Short: "Show the event listeners a component registers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		c, err := s.lookup(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headStyle.Render("Listeners for "+c.Name()))
		if len(c.Descriptor.Listeners) == 0 {
			fmt.Fprintln(out, "  None")
			return nil
		}
		for _, l := range c.Descriptor.Listeners {
			fmt.Fprintln(out, "  "+l)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listenersCmd)
}
