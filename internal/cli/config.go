package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plugmgr/plugmgr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write lifecycle and loader settings. Values come from defaults,
then config.yaml in the home directory, then PLUGMGR_* environment variables.`,
}

func init() {
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Persist a setting (list settings take a comma-separated value)",
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print the effective value of a setting",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List every setting with its effective value",
			Args:  cobra.NoArgs,
			RunE:  runConfigList,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
				return nil
			},
		},
	)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := checkKey(key); err != nil {
		return err
	}
	if err := config.Set(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, config.Get(key))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := checkKey(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, key := range config.Keys() {
		fmt.Fprintf(w, "%s\t%s\n", key, config.Get(key))
	}
	return w.Flush()
}

// checkKey rejects unknown keys, naming the closest known one.
func checkKey(key string) error {
	if config.IsKnown(key) {
		return nil
	}
	if s := suggest(key, config.Keys()); len(s) > 0 {
		return fmt.Errorf("unknown config key %q (did you mean %s?)", key, s[0])
	}
	return fmt.Errorf("unknown config key %q", key)
}
