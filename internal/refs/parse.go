package refs

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/apm-labs/apm/internal/githost"
)

var (
	sshSpecRe = regexp.MustCompile(`^git@([^:]+):(.+)$`)
	segmentRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// Parse parses a package specification string into a DependencyReference.
//
// Supported forms:
//
//	owner/repo
//	owner/repo#ref
//	owner/repo@alias
//	owner/repo#ref@alias
//	host.com/owner/repo[#ref][@alias]
//	https://host.com/owner/repo[.git]
//	git@host.com:owner/repo.git[#ref][@alias]
//	owner/repo/path/to/file.prompt.md        (virtual file)
//	owner/repo/collections/name              (virtual collection)
//	dev.azure.com/org/project/repo           (Azure DevOps)
func Parse(spec string) (DependencyReference, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DependencyReference{}, fmt.Errorf("empty dependency specification")
	}
	for _, c := range spec {
		if c < 32 {
			return DependencyReference{}, fmt.Errorf("dependency specification contains control characters")
		}
	}

	if m := sshSpecRe.FindStringSubmatch(spec); m != nil {
		return parseSSH(m[1], m[2])
	}

	rest := spec
	var alias, reference string

	// @alias binds last, #ref next; both are suffixes on the full spec.
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		alias = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "#"); i >= 0 {
		reference = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)

	var host, path string
	if strings.HasPrefix(rest, "https://") || strings.HasPrefix(rest, "http://") {
		u, err := url.Parse(rest)
		if err != nil || u.Hostname() == "" {
			return DependencyReference{}, fmt.Errorf("invalid repository URL %q", rest)
		}
		host = strings.ToLower(u.Hostname())
		path = strings.Trim(u.Path, "/")
	} else {
		path = strings.Trim(rest, "/")
		segs := splitNonEmpty(path)
		if len(segs) > 1 && strings.Contains(segs[0], ".") && githost.IsValidFQDN(segs[0]) {
			host = strings.ToLower(segs[0])
			path = strings.Join(segs[1:], "/")
		}
	}

	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, ".git")
	segs := splitNonEmpty(path)

	repoSegs := 2
	if isAzureHost(host) {
		repoSegs = 3
	}
	if len(segs) < repoSegs {
		return DependencyReference{}, fmt.Errorf(
			"invalid repository %q: expected 'owner/repo', 'host/owner/repo', or a virtual file path", spec)
	}

	repoPath := strings.Join(segs[:repoSegs], "/")
	for _, s := range segs[:repoSegs] {
		if !segmentRe.MatchString(s) {
			return DependencyReference{}, fmt.Errorf("invalid repository segment %q in %q", s, spec)
		}
	}

	dep := DependencyReference{
		RepoPath:  repoPath,
		Host:      host,
		Reference: reference,
		Alias:     alias,
	}

	if len(segs) > repoSegs {
		dep.VirtualPath = strings.Join(segs[repoSegs:], "/")
		dep.IsVirtual = true
		if !dep.IsVirtualCollection() && !dep.IsVirtualFile() {
			return DependencyReference{}, fmt.Errorf(
				"invalid virtual package path %q: individual files must end with one of: %s",
				dep.VirtualPath, strings.Join(VirtualFileExtensions, ", "))
		}
	}

	if alias != "" && !segmentRe.MatchString(alias) {
		return DependencyReference{}, fmt.Errorf("invalid alias %q: only letters, digits, dots, underscores, and hyphens are allowed", alias)
	}

	return dep, nil
}

func parseSSH(host, rest string) (DependencyReference, error) {
	var alias, reference string
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		alias = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "#"); i >= 0 {
		reference = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ".git")

	segs := splitNonEmpty(rest)
	if len(segs) < 2 {
		return DependencyReference{}, fmt.Errorf("invalid SSH repository path %q", rest)
	}

	return DependencyReference{
		RepoPath:  strings.Join(segs, "/"),
		Host:      strings.ToLower(host),
		Reference: reference,
		Alias:     alias,
	}, nil
}

// NormalizeRepoURL reduces any repository URL form to its host-less path:
// scheme and host are stripped, as are a trailing ".git" and slash. Case
// and nested path segments are preserved. A bare "owner/repo" comes back
// unchanged apart from suffix stripping, and a URL with no path component
// is returned as-is.
func NormalizeRepoURL(repoURL string) string {
	s := strings.TrimSpace(repoURL)
	if i := strings.Index(s, "://"); i >= 0 {
		rest := s[i+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return s // no path component after the host
		}
		s = rest[slash+1:]
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	return strings.TrimSuffix(s, "/")
}

func isAzureHost(host string) bool {
	return host == "dev.azure.com" || strings.HasSuffix(host, ".visualstudio.com")
}

func splitNonEmpty(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
