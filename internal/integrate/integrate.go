// Package integrate projects installed packages' artifacts into the
// project's target directories. Generated prompts and agents are
// nuke-and-regenerated on every sync pass, discriminated from user files
// by the reserved -apm suffix; skills are written once at install time.
package integrate

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/apm-labs/apm/internal/project"
)

// SyncReport is the outcome of one sync pass. Errors counts individual
// file failures; the pass itself always runs to completion.
type SyncReport struct {
	FilesRemoved    int
	FilesIntegrated int
	Errors          int
}

// Synchronizer regenerates the project's integration outputs.
type Synchronizer struct {
	logger *log.Logger
}

// New builds a Synchronizer. A nil logger discards output.
func New(logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Synchronizer{logger: logger}
}

// Sync removes every previously generated prompt and agent, then rewrites
// the full current set from the installed packages, in order. Files
// without the reserved suffix are never touched.
func (s *Synchronizer) Sync(projectRoot string, installedPaths []string) SyncReport {
	var report SyncReport

	targets := []struct {
		dir    string
		suffix string
	}{
		{project.GitHubPromptsDir(projectRoot), PromptSuffix},
		{project.GitHubAgentsDir(projectRoot), AgentSuffix},
	}
	claude := project.HasClaudeDir(projectRoot)
	if claude {
		targets = append(targets, struct {
			dir    string
			suffix string
		}{project.ClaudeAgentsDir(projectRoot), ClaudeAgentSuffix})
	}

	for _, t := range targets {
		removed, errs := s.removeGenerated(t.dir, t.suffix)
		report.FilesRemoved += removed
		report.Errors += errs
	}

	for _, rel := range installedPaths {
		pkgDir := project.InstallPath(projectRoot, rel)

		for _, src := range s.findArtifacts(pkgDir, "prompts", ".prompt.md") {
			report.countWrite(s.writeGenerated(src, project.GitHubPromptsDir(projectRoot), ".prompt.md", PromptSuffix))
		}
		for _, src := range s.findArtifacts(pkgDir, "agents", ".agent.md") {
			report.countWrite(s.writeGenerated(src, project.GitHubAgentsDir(projectRoot), ".agent.md", AgentSuffix))
			if claude {
				report.countWrite(s.writeGenerated(src, project.ClaudeAgentsDir(projectRoot), ".agent.md", ClaudeAgentSuffix))
			}
		}
	}

	return report
}

func (r *SyncReport) countWrite(err error) {
	if err != nil {
		r.Errors++
		return
	}
	r.FilesIntegrated++
}

// removeGenerated deletes every file in dir carrying the suffix.
func (s *Synchronizer) removeGenerated(dir, suffix string) (removed, errs int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0 // absent directory means nothing to remove
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("removing generated file failed", "path", path, "error", err)
			errs++
			continue
		}
		removed++
	}
	return removed, errs
}

// findArtifacts lists a package's artifact files for one kind, looking in
// .apm/<subdir> first and the package-root <subdir> as fallback.
func (s *Synchronizer) findArtifacts(pkgDir, subdir, ext string) []string {
	var out []string
	for _, dir := range []string{
		filepath.Join(pkgDir, ".apm", subdir),
		filepath.Join(pkgDir, subdir),
	} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
				out = append(out, filepath.Join(dir, e.Name()))
			}
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}

// writeGenerated copies src verbatim into destDir under the transformed
// generated name.
func (s *Synchronizer) writeGenerated(src, destDir, ext, suffix string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		s.logger.Warn("reading artifact failed", "path", src, "error", err)
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(src), ext)
	name := ToHyphenCase(stem) + suffix

	if err := project.EnsureDir(destDir); err != nil {
		s.logger.Warn("creating output directory failed", "dir", destDir, "error", err)
		return err
	}
	target := filepath.Join(destDir, name)
	if err := os.WriteFile(target, data, project.FilePerm); err != nil {
		s.logger.Warn("writing generated file failed", "path", target, "error", err)
		return err
	}
	return nil
}
