package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/loader"
)

func init() {
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load <source> [extra-source...]",
	Short: "Install a component package and its dependencies",
	Long: `Install a component package from a URL or a local file. Relative paths are
resolved against the packages directory. Extra sources are offered as
candidates for the primary package's dependencies and are installed first
when it needs them; extras that cannot be read are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	report, err := s.pipeline().Load(args[0], args[1:]...)
	printLoadReport(out, report)
	if err == nil {
		return nil
	}

	var le *loader.Error
	if !errors.As(err, &le) {
		return err
	}
	switch le.Kind {
	case loader.KindPolicy:
		fmt.Fprintln(out, errStyle.Render(le.Err.Error()+"."))
	case loader.KindMissingDependencies:
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("Cannot load %s: missing dependencies %s.", le.Source, strings.Join(le.Missing, ", "))))
		fmt.Fprintln(out, dimStyle.Render("Pass the packages as extra sources, or set load-block-missing-deps=false."))
	default:
		fmt.Fprintln(out, errStyle.Render(err.Error()))
	}
	return errReported
}

func printLoadReport(w io.Writer, r *loader.Report) {
	if r == nil {
		return
	}
	for _, sk := range r.Skipped {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Skipped %s: %v", sk.Source, sk.Err)))
	}
	for _, e := range r.BrokenCycles {
		fmt.Fprintln(w, warnStyle.Render("Ignored cyclic dependency "+e.String()))
	}
	for _, it := range r.Items {
		switch it.Status {
		case loader.ItemInstalled:
			fmt.Fprintln(w, okStyle.Render("Installed "+it.Name))
		case loader.ItemSkipped:
			fmt.Fprintln(w, dimStyle.Render(it.Name+" is already installed"))
		case loader.ItemFailed:
			fmt.Fprintln(w, errStyle.Render(fmt.Sprintf("Failed to install %s: %v", it.Name, it.Err)))
		case loader.ItemNotAttempted:
			fmt.Fprintln(w, dimStyle.Render("Not attempted: "+it.Name))
		}
	}
}
