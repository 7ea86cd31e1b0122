// Package githost classifies git hosting platforms and builds
// platform-correct API and clone URLs.
//
// Supported families:
//   - github.com (cloud)
//   - *.ghe.com (GitHub Enterprise Cloud)
//   - dev.azure.com and *.visualstudio.com (Azure DevOps)
//   - any valid FQDN configured as the override host (GitHub Enterprise
//     Server or a compatible custom host)
package githost

import (
	"fmt"
	"net/url"
	"strings"
)

// Family identifies the URL-building rules for a host.
type Family int

const (
	// FamilyGitHub is github.com.
	FamilyGitHub Family = iota
	// FamilyGHECloud is *.ghe.com — enterprise-flavored but with an
	// api. subdomain like cloud GitHub.
	FamilyGHECloud
	// FamilyEnterprise is GitHub Enterprise Server or a compatible custom
	// host. The content API lives under /api/v3 on the host itself.
	FamilyEnterprise
	// FamilyAzureCloud is dev.azure.com.
	FamilyAzureCloud
	// FamilyAzureServer is an on-premises Azure DevOps Server, including
	// *.visualstudio.com legacy hosts.
	FamilyAzureServer
)

// Host is a classified git hosting platform.
type Host struct {
	Name   string
	Family Family
}

// Options carries the operator-level host configuration. OverrideHost is
// the environment-configured default host; ExtraHosts extends the accepted
// set with additional known hosts.
type Options struct {
	OverrideHost string
	ExtraHosts   []string
}

// Resolve classifies hostname into a supported platform family.
// An empty hostname resolves to github.com or the override host when set.
func Resolve(hostname string, opts Options) (Host, error) {
	h := strings.ToLower(strings.TrimSpace(hostname))
	override := strings.ToLower(strings.TrimSpace(opts.OverrideHost))

	if h == "" {
		if override != "" {
			h = override
		} else {
			h = "github.com"
		}
	}

	switch {
	case h == "github.com":
		return Host{Name: h, Family: FamilyGitHub}, nil
	case strings.HasSuffix(h, ".ghe.com"):
		return Host{Name: h, Family: FamilyGHECloud}, nil
	case h == "dev.azure.com":
		return Host{Name: h, Family: FamilyAzureCloud}, nil
	case strings.HasSuffix(h, ".visualstudio.com"):
		return Host{Name: h, Family: FamilyAzureServer}, nil
	}

	for _, extra := range opts.ExtraHosts {
		if h == strings.ToLower(strings.TrimSpace(extra)) && IsValidFQDN(h) {
			return Host{Name: h, Family: FamilyEnterprise}, nil
		}
	}

	if override != "" && h == override && IsValidFQDN(h) {
		return Host{Name: h, Family: FamilyEnterprise}, nil
	}

	return Host{}, &UnsupportedHostError{Host: hostname, Override: opts.OverrideHost}
}

// IsGitHubFamily reports whether the host speaks the GitHub contents API.
func (h Host) IsGitHubFamily() bool {
	switch h.Family {
	case FamilyGitHub, FamilyGHECloud, FamilyEnterprise:
		return true
	}
	return false
}

// IsAzure reports whether the host speaks the Azure DevOps git API.
func (h Host) IsAzure() bool {
	return h.Family == FamilyAzureCloud || h.Family == FamilyAzureServer
}

// apiBase returns the GitHub-family API root for the host.
func (h Host) apiBase() string {
	switch h.Family {
	case FamilyGitHub:
		return "https://api.github.com"
	case FamilyGHECloud:
		// The one enterprise flavor that keeps the api. subdomain.
		return "https://api." + h.Name
	case FamilyEnterprise:
		return "https://" + h.Name + "/api/v3"
	}
	return ""
}

// ContentsURL builds the content API URL for a file or directory listing.
// repoPath is "owner/repo" for GitHub-family hosts and "org/project/repo"
// for Azure DevOps. path may be empty for the repository root.
func (h Host) ContentsURL(repoPath, path, ref string) string {
	if h.IsAzure() {
		org, project, repo := splitAzurePath(repoPath)
		return fmt.Sprintf("https://%s/%s/%s/_apis/git/repositories/%s/items?path=%s&versionDescriptor.version=%s&api-version=7.0",
			h.Name, org, project, repo, url.QueryEscape("/"+path), url.QueryEscape(ref))
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s",
		h.apiBase(), repoPath, escapePath(path), url.QueryEscape(ref))
}

// CommitsURL builds the API URL that resolves a ref to a commit.
// GitHub-family hosts answer with a single commit object; Azure DevOps
// answers with a one-element commit list.
func (h Host) CommitsURL(repoPath, ref string) string {
	if h.IsAzure() {
		org, project, repo := splitAzurePath(repoPath)
		return fmt.Sprintf("https://%s/%s/%s/_apis/git/repositories/%s/commits?searchCriteria.itemVersion.version=%s&$top=1&api-version=7.0",
			h.Name, org, project, repo, url.QueryEscape(ref))
	}
	return fmt.Sprintf("%s/repos/%s/commits/%s", h.apiBase(), repoPath, url.QueryEscape(ref))
}

// ItemsListURL builds the Azure DevOps recursive item listing URL for a
// scope path. Empty scopePath lists the repository root.
func (h Host) ItemsListURL(repoPath, scopePath, ref string) string {
	org, project, repo := splitAzurePath(repoPath)
	return fmt.Sprintf("https://%s/%s/%s/_apis/git/repositories/%s/items?scopePath=%s&recursionLevel=full&versionDescriptor.version=%s&api-version=7.0",
		h.Name, org, project, repo, url.QueryEscape("/"+scopePath), url.QueryEscape(ref))
}

// CloneURL builds an HTTPS clone URL. A non-empty token is embedded as
// userinfo; callers must mask it before logging (see MaskToken).
func (h Host) CloneURL(repoPath, token string) string {
	authority := h.Name
	if token != "" {
		authority = token + "@" + h.Name
	}
	switch h.Family {
	case FamilyAzureCloud, FamilyAzureServer:
		org, project, repo := splitAzurePath(repoPath)
		return fmt.Sprintf("https://%s/%s/%s/_git/%s", authority, org, project, repo)
	default:
		return fmt.Sprintf("https://%s/%s", authority, repoPath)
	}
}

// SSHCloneURL builds the SSH clone URL for the host's platform.
func (h Host) SSHCloneURL(repoPath string) string {
	switch h.Family {
	case FamilyAzureCloud:
		org, project, repo := splitAzurePath(repoPath)
		return fmt.Sprintf("git@ssh.dev.azure.com:v3/%s/%s/%s", org, project, repo)
	case FamilyAzureServer:
		org, project, repo := splitAzurePath(repoPath)
		return fmt.Sprintf("ssh://git@%s/%s/%s/_git/%s", h.Name, org, project, repo)
	default:
		return fmt.Sprintf("git@%s:%s.git", h.Name, repoPath)
	}
}

// splitAzurePath splits "org/project/repo" into its parts. A two-segment
// path reuses the project name as the repository name, matching the Azure
// shorthand for same-named projects.
func splitAzurePath(repoPath string) (org, project, repo string) {
	parts := strings.Split(repoPath, "/")
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], parts[0], parts[0]
	case 2:
		return parts[0], parts[1], parts[1]
	default:
		return parts[0], parts[1], strings.Join(parts[2:], "/")
	}
}

// escapePath escapes each path segment while preserving separators.
func escapePath(p string) string {
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
