package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/apm-labs/apm/internal/branding"
	"github.com/apm-labs/apm/internal/config"
	"github.com/apm-labs/apm/internal/manifest"
	"github.com/apm-labs/apm/internal/project"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
	logger  = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           log.InfoLevel,
	})
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs agent packages (prompts, agents, skills) from git
repositories into your project, pins them in a lock file, and projects
their artifacts into the directories your coding assistants read.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		return err
	}
	return nil
}

// projectContext is the state every project-scoped command starts from.
type projectContext struct {
	Root     string
	Manifest *manifest.Package
	Config   *config.Config
}

// loadProject locates the project root from the working directory and
// loads its manifest and the resolved configuration.
func loadProject() (*projectContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := project.FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	pkg, warnings, err := manifest.Load(project.ManifestPath(root))
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	cfg := config.Load()
	return &projectContext{Root: root, Manifest: pkg, Config: &cfg}, nil
}
