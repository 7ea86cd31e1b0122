package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/project"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadProject()
		if err != nil {
			return err
		}

		lf := lockfile.Load(project.LockPath(ctx.Root))
		if len(lf.Dependencies) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No packages installed. Run 'apm install' first.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PACKAGE\tREFERENCE\tCOMMIT\tDEPTH\tVIA")
		for _, dep := range lf.Sorted() {
			ref := dep.Reference
			if ref == "" {
				ref = "main"
			}
			commit := dep.ResolvedCommit
			if len(commit) > 8 {
				commit = commit[:8]
			}
			via := dep.ResolvedBy
			if via == "" {
				via = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", dep.UniqueKey(), ref, commit, depthOrOne(dep.Depth), via)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func depthOrOne(d int) int {
	if d <= 0 {
		return 1
	}
	return d
}
