package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/dustin/go-humanize"
	"github.com/charmbracelet/lipgloss"

	"github.com/plugmgr/plugmgr/internal/lifecycle"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	headStyle = lipgloss.NewStyle().Bold(true)
)

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// suggest returns up to maxSuggestions names close to name, nearest first.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	target := strings.ToLower(name)
	limit := len(target)/3 + 1
	if limit < 2 {
		limit = 2
	}

	var matches []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		d := levenshtein.ComputeDistance(target, lc)
		if d <= limit || strings.Contains(lc, target) {
			matches = append(matches, scored{c, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return strings.ToLower(matches[i].name) < strings.ToLower(matches[j].name)
	})

	var out []string
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

func notFoundError(name string, known []string) error {
	if s := suggest(name, known); len(s) > 0 {
		return fmt.Errorf("component %s not found (did you mean %s?)", name, strings.Join(s, ", "))
	}
	return fmt.Errorf("component %s not found", name)
}

// printResult writes the coordinator result and returns errReported for
// outcomes that should fail the command.
func printResult(w io.Writer, res lifecycle.Result, known []string) error {
	msg := res.Message()
	switch res.Outcome {
	case lifecycle.OK:
		fmt.Fprintln(w, okStyle.Render(msg))
		if verbose {
			for _, s := range res.Steps {
				fmt.Fprintln(w, dimStyle.Render("  "+s.String()))
			}
		}
		return nil
	case lifecycle.NoOp:
		if res.Reason == lifecycle.ReasonNotFound {
			if s := suggest(res.Target, known); len(s) > 0 {
				msg += " Did you mean " + strings.Join(s, ", ") + "?"
			}
		}
		fmt.Fprintln(w, warnStyle.Render(msg))
		return nil
	default:
		fmt.Fprintln(w, errStyle.Render(msg))
		for _, s := range res.Steps {
			line := "  " + s.String()
			if s.Err != nil {
				fmt.Fprintln(w, errStyle.Render(line))
			} else {
				fmt.Fprintln(w, dimStyle.Render(line))
			}
		}
		return errReported
	}
}

func status(enabled bool) string {
	if enabled {
		return okStyle.Render("Enabled")
	}
	return errStyle.Render("Disabled")
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
