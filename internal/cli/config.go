package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		fmt.Fprintf(cmd.OutOrStdout(), "host: %s\n", cfg.ResolvedHost())
		for _, h := range cfg.ExtraHosts {
			fmt.Fprintf(cmd.OutOrStdout(), "extra_host: %s\n", h)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "auto_integrate: %v\n", cfg.AutoIntegrate)
		if cfg.Token != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "token: ***")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
