package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/host"
)

func init() {
	rootCmd.AddCommand(filesCmd)
}

var filesCmd = &cobra.Command{
	Use:   "files <component>",
	Short: "Show a component's package file and data directory",
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
		fp, err := host.Measure(c)
		if err != nil {
			return fmt.Errorf("measuring %s: %w", c.Name(), err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headStyle.Render("Files of "+c.Name()))
		if fp.PackagePath == "" {
			fmt.Fprintln(out, "  Package: none")
		} else {
			fmt.Fprintf(out, "  Package: %s (%s)\n", fp.PackagePath, formatSize(fp.PackageSize))
		}
		switch {
		case fp.DataDir == "":
			fmt.Fprintln(out, "  Data:    none")
		case !fp.DataExists:
			fmt.Fprintf(out, "  Data:    %s (not created)\n", fp.DataDir)
		default:
			fmt.Fprintf(out, "  Data:    %s (%d files, %s)\n", fp.DataDir, fp.DataFiles, formatSize(fp.DataSize))
		}
		return nil
	},
}
