package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/host"
)

var (
	listJSON  bool
	listState string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed components",
	Long: `List every component known to the host registry with its version and state.
The header always counts the whole registry; --state only filters the rows.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listState, "state", "all", "Show only enabled, disabled or all components")
	rootCmd.AddCommand(listCmd)
}

type componentRow struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
	Package string `json:"package,omitempty"`
}

func (r componentRow) state() string {
	if r.Enabled {
		return "enabled"
	}
	return "disabled"
}

func runList(cmd *cobra.Command, args []string) error {
	switch listState {
	case "all", "enabled", "disabled":
	default:
		return fmt.Errorf("invalid --state %q (want enabled, disabled or all)", listState)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	rows, enabled := componentRows(s.reg)

	shown := rows[:0:0]
	for _, r := range rows {
		if listState == "all" || listState == r.state() {
			shown = append(shown, r)
		}
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(shown)
	}
	fmt.Fprintln(out, headStyle.Render(fmt.Sprintf("Components (%d/%d enabled):", enabled, len(rows))))
	return writeRows(out, shown)
}

// componentRows snapshots the registry and counts enabled entries.
func componentRows(reg host.Registry) ([]componentRow, int) {
	comps := reg.Components()
	rows := make([]componentRow, 0, len(comps))
	enabled := 0
	for _, c := range comps {
		r := componentRow{
			Name:    c.Name(),
			Version: c.Descriptor.Version,
			Enabled: reg.Enabled(c),
			Package: c.PackagePath,
		}
		if r.Enabled {
			enabled++
		}
		rows = append(rows, r)
	}
	return rows, enabled
}

func writeRows(out io.Writer, rows []componentRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tSTATUS")
	for _, r := range rows {
		v := r.Version
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, v, r.state())
	}
	return w.Flush()
}
