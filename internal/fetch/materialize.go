package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/apm-labs/apm/internal/githost"
	"github.com/apm-labs/apm/internal/manifest"
	"github.com/apm-labs/apm/internal/project"
	"github.com/apm-labs/apm/internal/refs"
)

// extensionSubdirs maps virtual file extensions to their .apm
// subdirectory inside a materialized virtual package.
var extensionSubdirs = map[string]string{
	".prompt.md":       "prompts",
	".instructions.md": "instructions",
	".chatmode.md":     "chatmodes",
	".agent.md":        "agents",
}

// Install materializes a dependency under the project's module root and
// returns its PackageInfo. Virtual references go through the single-file
// or collection path; regular references download the full tree. A
// regular package without a readable apm.yml still installs, but the
// returned error wraps ErrNoManifest so the resolver can leaf it.
func (f *Fetcher) Install(ctx context.Context, projectRoot string, dep refs.DependencyReference) (*PackageInfo, error) {
	host, err := f.HostFor(dep)
	if err != nil {
		return nil, err
	}

	resolved, err := f.ResolveCommit(ctx, host, dep.RepoPath, dep.Reference)
	if err != nil {
		return nil, err
	}

	installPath := project.InstallPath(projectRoot, dep.InstallRelPath())
	// A re-install starts from an empty directory; files deleted
	// upstream must not survive the previous materialization.
	if err := os.RemoveAll(installPath); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", installPath, err)
	}

	info := &PackageInfo{
		Ref:         dep,
		Resolved:    resolved,
		InstallPath: installPath,
		InstalledAt: time.Now().UTC(),
	}

	switch {
	case dep.IsVirtualCollection():
		err = f.installCollection(ctx, host, dep, resolved.RefName, installPath)
	case dep.IsVirtualFile():
		err = f.installVirtualFile(ctx, host, dep, resolved.RefName, installPath)
	default:
		err = f.DownloadTree(ctx, host, dep.RepoPath, resolved.RefName, installPath)
	}
	if err != nil {
		return nil, err
	}

	pkg, _, err := manifest.Load(project.ManifestPath(installPath))
	if err != nil {
		return info, fmt.Errorf("%s: %w", dep.RepoPath, errors.Join(ErrNoManifest, err))
	}
	info.Package = pkg
	return info, nil
}

// installVirtualFile fetches the single pinned file and shapes it into a
// one-artifact package: the file under its .apm subdirectory plus a
// synthesized apm.yml.
func (f *Fetcher) installVirtualFile(ctx context.Context, host githost.Host, dep refs.DependencyReference, ref, installPath string) error {
	content, _, err := f.FetchFile(ctx, host, dep.RepoPath, dep.VirtualPath, ref)
	if err != nil {
		return err
	}

	name := path.Base(dep.VirtualPath)
	target := filepath.Join(installPath, ".apm", subdirForFile(name), name)
	if err := os.MkdirAll(filepath.Dir(target), project.DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, content, project.FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	desc := frontmatterDescription(content)
	if desc == "" {
		desc = fmt.Sprintf("Virtual package for %s from %s", dep.VirtualPath, dep.RepoPath)
	}
	return writeSyntheticManifest(installPath, dep.VirtualPackageName(), desc)
}

// installCollection fetches the collection manifest and every item it
// names. Per-item failures are collected, not fatal; a collection where
// nothing could be fetched is an error.
func (f *Fetcher) installCollection(ctx context.Context, host githost.Host, dep refs.DependencyReference, ref, installPath string) error {
	colName := path.Base(dep.VirtualPath)
	colDir := path.Dir(dep.VirtualPath)

	data, usedRef, err := f.fetchCollectionManifest(ctx, host, dep.RepoPath, colDir, colName, ref)
	if err != nil {
		return err
	}
	col, err := manifest.ParseCollection(data)
	if err != nil {
		return fmt.Errorf("%s/%s: %w", dep.RepoPath, dep.VirtualPath, err)
	}

	var itemErrs []error
	fetched := 0
	for _, item := range col.Items {
		content, _, err := f.FetchFile(ctx, host, dep.RepoPath, item.Path, usedRef)
		if err != nil {
			itemErrs = append(itemErrs, err)
			continue
		}
		target := filepath.Join(installPath, ".apm", item.Subdirectory(), path.Base(item.Path))
		if err := os.MkdirAll(filepath.Dir(target), project.DirPerm); err != nil {
			itemErrs = append(itemErrs, err)
			continue
		}
		if err := os.WriteFile(target, content, project.FilePerm); err != nil {
			itemErrs = append(itemErrs, err)
			continue
		}
		fetched++
	}

	if fetched == 0 {
		return fmt.Errorf("collection %s: no items could be fetched: %w",
			dep.VirtualPath, errors.Join(itemErrs...))
	}
	if err := writeSyntheticManifest(installPath, dep.VirtualPackageName(), col.Description); err != nil {
		return err
	}
	if len(itemErrs) > 0 {
		return fmt.Errorf("collection %s: %d of %d items failed: %w",
			dep.VirtualPath, len(itemErrs), len(col.Items), errors.Join(itemErrs...))
	}
	return nil
}

// fetchCollectionManifest tries <name>.collection.yml, then .yaml.
func (f *Fetcher) fetchCollectionManifest(ctx context.Context, host githost.Host, repoPath, colDir, colName, ref string) ([]byte, string, error) {
	base := path.Join(colDir, colName)
	data, usedRef, err := f.FetchFile(ctx, host, repoPath, base+".collection.yml", ref)
	if err == nil {
		return data, usedRef, nil
	}
	if errors.Is(err, ErrNotFound) {
		return f.FetchFile(ctx, host, repoPath, base+".collection.yaml", ref)
	}
	return nil, "", err
}

func subdirForFile(name string) string {
	for ext, dir := range extensionSubdirs {
		if strings.HasSuffix(name, ext) {
			return dir
		}
	}
	return "prompts"
}

func writeSyntheticManifest(installPath, name, description string) error {
	pkg := &manifest.Package{
		Name:        name,
		Version:     "1.0.0",
		Description: description,
	}
	return pkg.Write(project.ManifestPath(installPath))
}

// frontmatterDescription pulls the description field out of a markdown
// file's leading YAML frontmatter, if any.
func frontmatterDescription(content []byte) string {
	fm, _ := SplitFrontmatter(content)
	if fm == nil {
		return ""
	}
	var meta struct {
		Description string `yaml:"description"`
	}
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Description)
}

// SplitFrontmatter separates a leading YAML frontmatter block from the
// body. Returns a nil frontmatter slice when the content carries none.
func SplitFrontmatter(content []byte) (frontmatter, body []byte) {
	s := string(content)
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return nil, content
	}

	rest := s[strings.Index(s, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, content
	}

	fm := rest[:end]
	after := rest[end+len("\n---"):]
	if i := strings.Index(after, "\n"); i >= 0 {
		after = after[i+1:]
	} else {
		after = ""
	}
	return []byte(fm), []byte(after)
}
