package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/integrate"
	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/project"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate integration outputs from installed packages",
	Long: `Sync deletes every previously generated prompt and agent file and
rewrites the current set from the packages recorded in apm.lock.
User-authored files are never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadProject()
		if err != nil {
			return err
		}

		lf := lockfile.Load(project.LockPath(ctx.Root))
		report := integrate.New(logger).Sync(ctx.Root, lf.InstalledPaths())

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale, integrated %d artifacts",
			report.FilesRemoved, report.FilesIntegrated)
		if report.Errors > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d errors)", report.Errors)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
