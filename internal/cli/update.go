package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-resolve all dependencies to their latest matching commits",
	Long: `Update runs a fresh resolution pass for every declared dependency,
moving branch references to their current head commits and rewriting
apm.lock. Tag and commit references stay pinned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadProject()
		if err != nil {
			return err
		}

		direct := ctx.Manifest.APMDependencies()
		if len(direct) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No dependencies declared in apm.yml.")
			return nil
		}
		return resolveAndSync(cmd, ctx, direct)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
