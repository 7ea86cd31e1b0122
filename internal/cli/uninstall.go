package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/integrate"
	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/project"
	"github.com/apm-labs/apm/internal/refs"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <package>",
	Short: "Remove a package from the project",
	Long: `Uninstall removes the package from apm.yml, deletes its installed files,
drops its lock entry, and regenerates the integration outputs.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	ctx, err := loadProject()
	if err != nil {
		return err
	}

	dep, err := refs.Parse(args[0])
	if err != nil {
		return err
	}
	key := dep.UniqueKey()

	// Drop the declaration.
	found := false
	if ctx.Manifest.Dependencies != nil {
		kept := ctx.Manifest.Dependencies.APM[:0]
		for _, spec := range ctx.Manifest.Dependencies.APM {
			declared, err := refs.Parse(spec)
			if err != nil || declared.UniqueKey() != key {
				kept = append(kept, spec)
				continue
			}
			found = true
		}
		ctx.Manifest.Dependencies.APM = kept
	}
	if !found {
		return fmt.Errorf("%s is not declared in apm.yml", dep.DisplayName())
	}
	if err := ctx.Manifest.Write(project.ManifestPath(ctx.Root)); err != nil {
		return err
	}

	// Drop the installed tree and the lock entry.
	installDir := project.InstallPath(ctx.Root, dep.InstallRelPath())
	if err := os.RemoveAll(installDir); err != nil {
		logger.Warn("could not remove installed files", "path", installDir, "error", err)
	}

	lf := lockfile.Load(project.LockPath(ctx.Root))
	if lf.Remove(key) {
		if err := lf.Save(project.LockPath(ctx.Root)); err != nil {
			return err
		}
	}

	report := integrate.New(logger).Sync(ctx.Root, lf.InstalledPaths())
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d artifacts regenerated)\n",
		dep.DisplayName(), report.FilesIntegrated)
	return nil
}
