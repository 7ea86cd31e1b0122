package resolve

import (
	"os"
	"path/filepath"

	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/project"
	"github.com/apm-labs/apm/internal/refs"
)

// DeclarationOrder combines the manifest's direct dependencies, in their
// declared order, with any lock entries absent from that list appended in
// lock order. Directly-declared packages always come first; transitive
// ones follow without duplication.
func DeclarationOrder(direct []refs.DependencyReference, lf *lockfile.LockFile) []string {
	seen := make(map[string]bool)
	var out []string

	for _, dep := range direct {
		key := dep.UniqueKey()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}

	for _, locked := range lf.Sorted() {
		key := locked.UniqueKey()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}

	return out
}

// Orphans reports the installed paths justified by neither the direct
// declarations nor any lock entry. Lock membership alone is enough to
// keep a transitive package.
func Orphans(installed []string, direct []refs.DependencyReference, lf *lockfile.LockFile) []string {
	wanted := make(map[string]bool)
	for _, dep := range direct {
		wanted[dep.InstallRelPath()] = true
	}
	for _, locked := range lf.Dependencies {
		wanted[locked.InstallRelPath()] = true
	}

	var orphans []string
	for _, p := range installed {
		if !wanted[p] {
			orphans = append(orphans, p)
		}
	}
	return orphans
}

// ListInstalled scans the project's module root and returns the
// install-relative path of every directory that carries an apm.yml.
func ListInstalled(projectRoot string) ([]string, error) {
	root := project.ModulesRoot(projectRoot)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if project.HasManifest(path) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
