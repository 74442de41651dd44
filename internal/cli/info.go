package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <component>",
	Short: "Show a component's descriptor and state",
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

		d := c.Descriptor
		version := d.Version
		if v, err := d.SemVer(); err == nil {
			version = v.String()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headStyle.Render("Component: "+d.Name))
		fmt.Fprintf(out, "  Version:     %s\n", version)
		fmt.Fprintf(out, "  Authors:     %s\n", joinOr(d.AllAuthors(), "Unknown"))
		description := d.Description
		if description == "" {
			description = "No description available"
		}
		fmt.Fprintf(out, "  Description: %s\n", description)
		fmt.Fprintf(out, "  Status:      %s\n", status(s.reg.Enabled(c)))
		if c.PackagePath != "" {
			fmt.Fprintf(out, "  Package:     %s\n", c.PackagePath)
		}
		if len(d.Provides) > 0 {
			fmt.Fprintf(out, "  Provides:    %s\n", joinOr(d.Provides, ""))
		}
		fmt.Fprintf(out, "  Commands:    %s\n", joinOr(d.CommandNames(), "None"))
		fmt.Fprintf(out, "  Listeners:   %s\n", joinOr(d.Listeners, "None"))
		return nil
	},
}
