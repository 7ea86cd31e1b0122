package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/fetch"
	"github.com/apm-labs/apm/internal/integrate"
	"github.com/apm-labs/apm/internal/manifest"
	"github.com/apm-labs/apm/internal/project"
	"github.com/apm-labs/apm/internal/refs"
	"github.com/apm-labs/apm/internal/resolve"
)

var installNoSync bool

var installCmd = &cobra.Command{
	Use:   "install [package...]",
	Short: "Install agent packages and their dependencies",
	Long: `Install resolves every dependency declared in apm.yml, pins the results
in apm.lock, and projects the installed artifacts into the integration
directories.

With package arguments, the packages are added to apm.yml first:

  apm install owner/repo
  apm install owner/repo#v1.2.0@alias
  apm install git.company.com/owner/repo
  apm install owner/repo/prompts/code-review.prompt.md`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installNoSync, "no-sync", false, "Skip integration sync after install")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx, err := loadProject()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		if err := addDependencies(ctx, args); err != nil {
			return err
		}
		// Reload so the resolver sees the new declarations.
		ctx.Manifest, _, err = manifest.Load(project.ManifestPath(ctx.Root))
		if err != nil {
			return err
		}
	}

	direct := ctx.Manifest.APMDependencies()
	if len(direct) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dependencies declared in apm.yml.")
		return nil
	}

	return resolveAndSync(cmd, ctx, direct)
}

// addDependencies appends new specs to the manifest. A spec whose unique
// key is already declared aborts the request with the manifest untouched.
func addDependencies(ctx *projectContext, specs []string) error {
	declared := make(map[string]bool)
	for _, dep := range ctx.Manifest.APMDependencies() {
		declared[dep.UniqueKey()] = true
	}

	var parsed []refs.DependencyReference
	for _, spec := range specs {
		dep, err := refs.Parse(spec)
		if err != nil {
			return err
		}
		if declared[dep.UniqueKey()] {
			return fmt.Errorf("%s is already declared in apm.yml", dep.DisplayName())
		}
		declared[dep.UniqueKey()] = true
		parsed = append(parsed, dep)
	}

	if ctx.Manifest.Dependencies == nil {
		ctx.Manifest.Dependencies = &manifest.Dependencies{}
	}
	ctx.Manifest.Dependencies.APM = append(ctx.Manifest.Dependencies.APM, specs...)
	return ctx.Manifest.Write(project.ManifestPath(ctx.Root))
}

// resolveAndSync runs a full resolution pass, persists the lock, and
// regenerates the integration outputs.
func resolveAndSync(cmd *cobra.Command, ctx *projectContext, direct []refs.DependencyReference) error {
	fetcher := fetch.New(ctx.Config, userAgent())
	resolver := resolve.New(fetcher, logger)

	result, err := resolver.Resolve(cmd.Context(), ctx.Root, direct)
	if err != nil {
		return err
	}

	lf := result.Lock(buildVersion)
	if err := lf.Save(project.LockPath(ctx.Root)); err != nil {
		return err
	}
	if err := project.EnsureGitignore(ctx.Root); err != nil {
		logger.Warn("could not update .gitignore", "error", err)
	}

	installed := result.Installed()
	for _, res := range installed {
		fmt.Fprintf(cmd.OutOrStdout(), "  + %s %s\n", res.Dep.DisplayName(), res.Info.Resolved)
	}
	for _, res := range result.Failures() {
		fmt.Fprintf(cmd.OutOrStdout(), "  ! %s: %v\n", res.Dep.DisplayName(), res.Err)
	}

	sync := integrate.New(logger)
	skills := 0
	for _, res := range installed {
		n, errs := sync.InstallSkills(ctx.Root, res.Info.InstallPath)
		skills += n
		if errs > 0 {
			logger.Warn("skill installation had failures", "package", res.Dep.DisplayName(), "failures", errs)
		}
	}

	if !installNoSync && ctx.Config.AutoIntegrate {
		report := sync.Sync(ctx.Root, lf.InstalledPaths())
		fmt.Fprintf(cmd.OutOrStdout(), "Integrated %d artifacts (%d stale removed",
			report.FilesIntegrated, report.FilesRemoved)
		if report.Errors > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d errors", report.Errors)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ")")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed %d packages", len(installed))
	if skills > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %d skills", skills)
	}
	if failures := len(result.Failures()); failures > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (%d unresolved)", failures)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func userAgent() string {
	return "apm/" + buildVersion
}
