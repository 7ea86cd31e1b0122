// Package refs parses agent package specification strings into structured
// dependency references and classifies git references.
package refs

import (
	"fmt"
	"regexp"
	"strings"
)

// RefType is the kind of git reference a spec pins.
type RefType string

const (
	RefBranch RefType = "branch"
	RefTag    RefType = "tag"
	RefCommit RefType = "commit"
)

// DefaultRef is assumed when a spec pins nothing.
const DefaultRef = "main"

// VirtualFileExtensions are the file suffixes accepted for single-file
// virtual packages.
var VirtualFileExtensions = []string{".prompt.md", ".instructions.md", ".chatmode.md", ".agent.md"}

// DependencyReference is a parsed package specification. Immutable once
// parsed; identity for matching is computed via UniqueKey, never stored.
type DependencyReference struct {
	RepoPath    string // "owner/repo", or "org/project/repo" for Azure DevOps
	Host        string // empty means "use the configured default host"
	Reference   string // branch, tag, or commit; empty means DefaultRef
	Alias       string // optional display alias
	VirtualPath string // repo-relative file or collection path for virtual packages
	IsVirtual   bool
}

// ResolvedReference is the outcome of pinning a reference against the
// remote: the original spec string, the classified type, and the full
// commit hash it resolved to.
type ResolvedReference struct {
	OriginalRef    string
	Type           RefType
	ResolvedCommit string
	RefName        string
}

func (r ResolvedReference) String() string {
	short := r.ResolvedCommit
	if len(short) > 8 {
		short = short[:8]
	}
	if r.Type == RefCommit {
		return short
	}
	return fmt.Sprintf("%s (%s)", r.RefName, short)
}

// UniqueKey returns the deduplication key for this dependency: the repo
// path for regular packages, repo path + virtual path for virtual ones.
func (d DependencyReference) UniqueKey() string {
	if d.IsVirtual && d.VirtualPath != "" {
		return d.RepoPath + "/" + d.VirtualPath
	}
	return d.RepoPath
}

// IsVirtualFile reports whether this is a single-file virtual package.
func (d DependencyReference) IsVirtualFile() bool {
	if !d.IsVirtual || d.VirtualPath == "" {
		return false
	}
	for _, ext := range VirtualFileExtensions {
		if strings.HasSuffix(d.VirtualPath, ext) {
			return true
		}
	}
	return false
}

// IsVirtualCollection reports whether this is a collection virtual package.
func (d DependencyReference) IsVirtualCollection() bool {
	if !d.IsVirtual || d.VirtualPath == "" {
		return false
	}
	return strings.HasPrefix(d.VirtualPath, "collections/") || strings.Contains(d.VirtualPath, "/collections/")
}

// VirtualPackageName derives a flattened package name for a virtual
// package: "<repo>-<filestem>" for files, "<repo>-<collection>" for
// collections.
func (d DependencyReference) VirtualPackageName() string {
	repoParts := strings.Split(d.RepoPath, "/")
	repoName := repoParts[len(repoParts)-1]
	if !d.IsVirtual || d.VirtualPath == "" {
		return repoName
	}

	pathParts := strings.Split(d.VirtualPath, "/")
	last := pathParts[len(pathParts)-1]
	if !d.IsVirtualCollection() {
		for _, ext := range VirtualFileExtensions {
			if strings.HasSuffix(last, ext) {
				last = strings.TrimSuffix(last, ext)
				break
			}
		}
	}
	return repoName + "-" + last
}

// InstallRelPath returns the package's directory below the module root:
// the repo path for regular packages, or the flattened
// "<owner>/<repo>-<stem>" form for virtual ones.
func (d DependencyReference) InstallRelPath() string {
	if !d.IsVirtual {
		return d.RepoPath
	}
	parts := strings.Split(d.RepoPath, "/")
	// Everything before the repo name stays as the namespace; the repo
	// itself is replaced with the flattened virtual name.
	ns := strings.Join(parts[:len(parts)-1], "/")
	if ns == "" {
		return d.VirtualPackageName()
	}
	return ns + "/" + d.VirtualPackageName()
}

// DisplayName returns the alias when set, the flattened virtual name for
// virtual packages, and the full repo path otherwise.
func (d DependencyReference) DisplayName() string {
	if d.Alias != "" {
		return d.Alias
	}
	if d.IsVirtual {
		return d.VirtualPackageName()
	}
	return d.RepoPath
}

// URL returns the HTTPS browse URL for the repository against the given
// default host.
func (d DependencyReference) URL(defaultHost string) string {
	host := d.Host
	if host == "" {
		host = defaultHost
	}
	return fmt.Sprintf("https://%s/%s", host, d.RepoPath)
}

func (d DependencyReference) String() string {
	s := d.RepoPath
	if d.VirtualPath != "" {
		s += "/" + d.VirtualPath
	}
	if d.Reference != "" {
		s += "#" + d.Reference
	}
	if d.Alias != "" {
		s += "@" + d.Alias
	}
	return s
}

var (
	commitRe = regexp.MustCompile(`^[a-f0-9]{7,40}$`)
	semverRe = regexp.MustCompile(`^v?\d+\.\d+\.\d+`)
)

// ClassifyRef determines the reference type from its shape: 7-40 hex
// characters is a commit, a semver-looking string is a tag, anything else
// is a branch. An empty ref defaults to the main branch.
func ClassifyRef(ref string) (RefType, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return RefBranch, DefaultRef
	}
	if commitRe.MatchString(strings.ToLower(ref)) {
		return RefCommit, ref
	}
	if semverRe.MatchString(ref) {
		return RefTag, ref
	}
	return RefBranch, ref
}
