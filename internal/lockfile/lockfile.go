// Package lockfile owns the apm.lock document: the durable record of
// resolved commits, hosts, depths, and provenance for every installed
// dependency. The resolver is the only writer; everything else reads.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/apm-labs/apm/internal/refs"
)

// Version is the current lock document format version.
const Version = "1"

// LockedDependency is one persisted resolution entry. Host is omitted
// when the default host applies; depth 1 means directly declared and
// carries no resolved_by.
type LockedDependency struct {
	RepoURL        string `yaml:"repo_url"`
	Host           string `yaml:"host,omitempty"`
	Reference      string `yaml:"reference,omitempty"`
	ResolvedCommit string `yaml:"resolved_commit,omitempty"`
	Depth          int    `yaml:"depth,omitempty"`
	ResolvedBy     string `yaml:"resolved_by,omitempty"`
	VirtualPath    string `yaml:"virtual_path,omitempty"`
	IsVirtual      bool   `yaml:"is_virtual,omitempty"`
	Alias          string `yaml:"alias,omitempty"`
}

// UniqueKey returns the entry's deduplication key: repo_url, extended
// with the virtual path for virtual packages.
func (d LockedDependency) UniqueKey() string {
	if d.IsVirtual && d.VirtualPath != "" {
		return d.RepoURL + "/" + d.VirtualPath
	}
	return d.RepoURL
}

// Ref reconstructs the dependency reference this entry was locked from.
func (d LockedDependency) Ref() refs.DependencyReference {
	return refs.DependencyReference{
		RepoPath:    d.RepoURL,
		Host:        d.Host,
		Reference:   d.Reference,
		Alias:       d.Alias,
		VirtualPath: d.VirtualPath,
		IsVirtual:   d.IsVirtual,
	}
}

// InstallRelPath returns the entry's directory below the module root,
// flattened for virtual packages.
func (d LockedDependency) InstallRelPath() string {
	return d.Ref().InstallRelPath()
}

// LockFile is the in-memory form of apm.lock. Dependencies keeps
// insertion order; depth-1 entries stay in declaration order.
type LockFile struct {
	LockfileVersion string             `yaml:"lockfile_version"`
	APMVersion      string             `yaml:"apm_version,omitempty"`
	GeneratedAt     string             `yaml:"generated_at,omitempty"`
	Dependencies    []LockedDependency `yaml:"dependencies"`
}

// New returns an empty lock file at the current format version.
func New(apmVersion string) *LockFile {
	return &LockFile{LockfileVersion: Version, APMVersion: apmVersion}
}

// Load reads the lock file at path. A missing, corrupt, or unparseable
// document comes back as an empty lock: the lock is a cache, never a
// required input.
func Load(path string) *LockFile {
	data, err := os.ReadFile(path)
	if err != nil {
		return New("")
	}

	var lf LockFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return New("")
	}
	if lf.LockfileVersion == "" {
		return New("")
	}
	return &lf
}

// Save atomically writes the lock document: marshal to a temp file in
// the same directory, then rename over the target.
func (lf *LockFile) Save(path string) error {
	lf.LockfileVersion = Version
	lf.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".apm.lock.*")
	if err != nil {
		return fmt.Errorf("creating temp lock file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp lock file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Add upserts an entry by unique key: a re-resolved dependency replaces
// its previous record in place, never duplicates.
func (lf *LockFile) Add(dep LockedDependency) {
	key := dep.UniqueKey()
	for i, existing := range lf.Dependencies {
		if existing.UniqueKey() == key {
			lf.Dependencies[i] = dep
			return
		}
	}
	lf.Dependencies = append(lf.Dependencies, dep)
}

// Has reports whether an entry with the given unique key exists.
func (lf *LockFile) Has(key string) bool {
	_, ok := lf.Get(key)
	return ok
}

// Get returns the entry with the given unique key.
func (lf *LockFile) Get(key string) (LockedDependency, bool) {
	for _, dep := range lf.Dependencies {
		if dep.UniqueKey() == key {
			return dep, true
		}
	}
	return LockedDependency{}, false
}

// Remove deletes the entry with the given unique key and reports
// whether it was present.
func (lf *LockFile) Remove(key string) bool {
	for i, dep := range lf.Dependencies {
		if dep.UniqueKey() == key {
			lf.Dependencies = append(lf.Dependencies[:i], lf.Dependencies[i+1:]...)
			return true
		}
	}
	return false
}

// Sorted returns the entries ordered by depth ascending, then repo path
// lexicographically, except that depth-1 entries keep their original
// declaration order within their tier.
func (lf *LockFile) Sorted() []LockedDependency {
	out := make([]LockedDependency, len(lf.Dependencies))
	copy(out, lf.Dependencies)

	order := make(map[string]int, len(lf.Dependencies))
	for i, dep := range lf.Dependencies {
		order[dep.UniqueKey()] = i
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		da, db := effectiveDepth(a), effectiveDepth(b)
		if da != db {
			return da < db
		}
		if da == 1 {
			return order[a.UniqueKey()] < order[b.UniqueKey()]
		}
		return a.RepoURL < b.RepoURL
	})
	return out
}

// InstalledPaths returns the install-relative path of every entry in
// depth-then-path order, virtual entries flattened, without duplicates.
func (lf *LockFile) InstalledPaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, dep := range lf.Sorted() {
		p := dep.InstallRelPath()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func effectiveDepth(d LockedDependency) int {
	if d.Depth <= 0 {
		return 1
	}
	return d.Depth
}
