package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/project"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the installed dependency tree",
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

		children := make(map[string][]lockfile.LockedDependency)
		for _, dep := range lf.Sorted() {
			children[dep.ResolvedBy] = append(children[dep.ResolvedBy], dep)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ctx.Manifest.Name)
		printTier(cmd.OutOrStdout(), children, "", "")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func printTier(w io.Writer, children map[string][]lockfile.LockedDependency, parent, indent string) {
	tier := children[parent]
	for i, dep := range tier {
		connector := "├── "
		childIndent := indent + "│   "
		if i == len(tier)-1 {
			connector = "└── "
			childIndent = indent + "    "
		}

		commit := dep.ResolvedCommit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		fmt.Fprintf(w, "%s%s%s (%s)\n", indent, connector, dep.UniqueKey(), commit)
		printTier(w, children, dep.RepoURL, childIndent)
	}
}
