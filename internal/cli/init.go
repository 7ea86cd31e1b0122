package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/manifest"
	"github.com/apm-labs/apm/internal/project"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create an apm.yml in the current directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing apm.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	path := project.ManifestPath(cwd)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", project.ManifestFile)
	}

	name := filepath.Base(cwd)
	if len(args) == 1 {
		name = args[0]
	}

	pkg := &manifest.Package{
		Name:        name,
		Version:     "0.1.0",
		Description: "Agent packages for " + name,
		Dependencies: &manifest.Dependencies{
			APM: []string{},
		},
	}
	if err := pkg.Write(path); err != nil {
		return err
	}
	if err := project.EnsureGitignore(cwd); err != nil {
		logger.Warn("could not update .gitignore", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s for %s\n", project.ManifestFile, name)
	return nil
}
