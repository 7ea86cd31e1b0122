// Package project centralizes the on-disk layout of an APM project:
// manifest and lock locations, the module install root, and the
// integration output directories.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Directory and file name constants for the project convention.
const (
	ManifestFile = "apm.yml"
	LockFileName = "apm.lock"
	ModulesDir   = "apm_modules"

	GitHubDir     = ".github"
	ClaudeDir     = ".claude"
	PromptsDir    = "prompts"
	AgentsDir     = "agents"
	SkillsDir     = "skills"
	GitignoreFile = ".gitignore"
)

// Permission constants.
const (
	DirPerm  os.FileMode = 0o755
	FilePerm os.FileMode = 0o644
)

// ManifestPath returns the apm.yml path for a project root.
func ManifestPath(root string) string {
	return filepath.Join(root, ManifestFile)
}

// LockPath returns the apm.lock path for a project root.
func LockPath(root string) string {
	return filepath.Join(root, LockFileName)
}

// ModulesRoot returns the package install root for a project.
func ModulesRoot(root string) string {
	return filepath.Join(root, ModulesDir)
}

// InstallPath returns the directory a package materializes into, given
// its install-relative path (host-less "owner/repo" or the flattened
// virtual form).
func InstallPath(root, relPath string) string {
	return filepath.Join(ModulesRoot(root), filepath.FromSlash(relPath))
}

// GitHubPromptsDir returns the .github/prompts output directory.
func GitHubPromptsDir(root string) string {
	return filepath.Join(root, GitHubDir, PromptsDir)
}

// GitHubAgentsDir returns the .github/agents output directory.
func GitHubAgentsDir(root string) string {
	return filepath.Join(root, GitHubDir, AgentsDir)
}

// GitHubSkillsDir returns the .github/skills output directory.
func GitHubSkillsDir(root string) string {
	return filepath.Join(root, GitHubDir, SkillsDir)
}

// ClaudeAgentsDir returns the .claude/agents output directory.
func ClaudeAgentsDir(root string) string {
	return filepath.Join(root, ClaudeDir, AgentsDir)
}

// ClaudeSkillsDir returns the .claude/skills output directory.
func ClaudeSkillsDir(root string) string {
	return filepath.Join(root, ClaudeDir, SkillsDir)
}

// HasClaudeDir reports whether the project opts into Claude outputs by
// carrying a .claude/ directory.
func HasClaudeDir(root string) bool {
	info, err := os.Stat(filepath.Join(root, ClaudeDir))
	return err == nil && info.IsDir()
}

// HasManifest reports whether root contains an apm.yml.
func HasManifest(root string) bool {
	info, err := os.Stat(ManifestPath(root))
	return err == nil && !info.IsDir()
}

// FindRoot walks upward from dir looking for an apm.yml and returns the
// first directory that carries one.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		if HasManifest(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no %s found in %s or any parent directory", ManifestFile, dir)
		}
		abs = parent
	}
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
