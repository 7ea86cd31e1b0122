package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/project"
	"github.com/apm-labs/apm/internal/resolve"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove orphaned packages",
	Long: `Prune removes installed packages that are justified by neither the
declarations in apm.yml nor any entry in apm.lock. Transitive
dependencies present in the lock file are never pruned.`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Report orphans without removing them")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx, err := loadProject()
	if err != nil {
		return err
	}

	installed, err := resolve.ListInstalled(ctx.Root)
	if err != nil {
		return err
	}

	lf := lockfile.Load(project.LockPath(ctx.Root))
	orphans := resolve.Orphans(installed, ctx.Manifest.APMDependencies(), lf)
	if len(orphans) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No orphaned packages.")
		return nil
	}

	for _, rel := range orphans {
		if pruneDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "would remove %s\n", rel)
			continue
		}
		if err := os.RemoveAll(project.InstallPath(ctx.Root, rel)); err != nil {
			logger.Warn("could not remove orphan", "path", rel, "error", err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", rel)
	}
	return nil
}
