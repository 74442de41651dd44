package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/host"
	"github.com/plugmgr/plugmgr/internal/resolver"
)

var depsTree bool

func init() {
	depsCmd.Flags().BoolVar(&depsTree, "tree", false, "Print the full dependency tree")
	rootCmd.AddCommand(depsCmd)
}

var depsCmd = &cobra.Command{
	Use:   "deps <component>",
	Short: "Show what a component depends on and what depends on it",
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

		if depsTree {
			resolver.PrintTree(out, resolver.BuildTree(c.Name(), host.Descriptors(s.reg)), "", true)
			return nil
		}

		dependents, err := s.coordinator().ListDependents(c.Name())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headStyle.Render("Dependencies of "+c.Name()))
		fmt.Fprintf(out, "  Depends:      %s\n", joinOr(c.Descriptor.Depend, "None"))
		fmt.Fprintf(out, "  Soft depends: %s\n", joinOr(c.Descriptor.SoftDepend, "None"))
		fmt.Fprintf(out, "  Dependents:   %s\n", joinOr(dependents, "None"))
		return nil
	},
}
