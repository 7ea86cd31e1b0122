package fetch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/apm-labs/apm/internal/config"
	"github.com/apm-labs/apm/internal/githost"
	"github.com/apm-labs/apm/internal/project"
	"github.com/apm-labs/apm/internal/refs"
)

const fallbackRef = "master"

// Fetcher retrieves files and repository trees for dependency references
// through the platform API selected by the host resolver.
type Fetcher struct {
	client *Client
	token  string
	opts   githost.Options
}

// New builds a Fetcher from the resolved configuration.
func New(cfg *config.Config, userAgent string) *Fetcher {
	return &Fetcher{
		client: NewClient(userAgent),
		token:  cfg.Token,
		opts: githost.Options{
			OverrideHost: cfg.GitHubHost,
			ExtraHosts:   cfg.ExtraHosts,
		},
	}
}

// Client exposes the underlying HTTP client layer. Used by tests.
func (f *Fetcher) Client() *Client {
	return f.client
}

// HostFor classifies the host a dependency reference targets.
func (f *Fetcher) HostFor(dep refs.DependencyReference) (githost.Host, error) {
	return githost.Resolve(dep.Host, f.opts)
}

func (f *Fetcher) headers(host githost.Host, accept string) http.Header {
	h := http.Header{}
	if accept != "" {
		h.Set("Accept", accept)
	}
	if f.token == "" {
		return h
	}
	if host.IsAzure() {
		// Azure DevOps PATs go over basic auth with an empty user.
		h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+f.token)))
	} else {
		h.Set("Authorization", "Bearer "+f.token)
	}
	return h
}

func rawAccept(host githost.Host) string {
	if host.IsAzure() {
		return "text/plain"
	}
	return "application/vnd.github.v3.raw"
}

func jsonAccept(host githost.Host) string {
	if host.IsAzure() {
		return "application/json"
	}
	return "application/vnd.github+json"
}

// FetchFile downloads a single file's raw bytes. When the requested ref
// is the default branch and the platform answers not-found, the request
// is retried once against master; the ref actually used comes back with
// the content. No other failure class is retried.
func (f *Fetcher) FetchFile(ctx context.Context, host githost.Host, repoPath, path, ref string) ([]byte, string, error) {
	if ref == "" {
		ref = refs.DefaultRef
	}

	data, err := f.client.Get(ctx, host.ContentsURL(repoPath, path, ref), f.headers(host, rawAccept(host)))
	if err == nil {
		return data, ref, nil
	}
	if ref == refs.DefaultRef && errors.Is(err, ErrNotFound) {
		data, retryErr := f.client.Get(ctx, host.ContentsURL(repoPath, path, fallbackRef), f.headers(host, rawAccept(host)))
		if retryErr == nil {
			return data, fallbackRef, nil
		}
	}
	return nil, "", fmt.Errorf("fetching %s/%s@%s: %w", repoPath, path, ref, err)
}

// ResolveCommit pins a reference to a full commit hash through the
// platform commit API, applying the same single default-branch fallback.
func (f *Fetcher) ResolveCommit(ctx context.Context, host githost.Host, repoPath, ref string) (refs.ResolvedReference, error) {
	refType, refName := refs.ClassifyRef(ref)

	sha, usedRef, err := f.lookupCommit(ctx, host, repoPath, refName)
	if err != nil && refName == refs.DefaultRef && errors.Is(err, ErrNotFound) {
		sha, usedRef, err = f.lookupCommit(ctx, host, repoPath, fallbackRef)
	}
	if err != nil {
		return refs.ResolvedReference{}, fmt.Errorf("resolving %s@%s: %w", repoPath, refName, err)
	}

	return refs.ResolvedReference{
		OriginalRef:    ref,
		Type:           refType,
		ResolvedCommit: sha,
		RefName:        usedRef,
	}, nil
}

func (f *Fetcher) lookupCommit(ctx context.Context, host githost.Host, repoPath, ref string) (string, string, error) {
	data, err := f.client.Get(ctx, host.CommitsURL(repoPath, ref), f.headers(host, jsonAccept(host)))
	if err != nil {
		return "", "", err
	}

	if host.IsAzure() {
		var out struct {
			Value []struct {
				CommitID string `json:"commitId"`
			} `json:"value"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return "", "", fmt.Errorf("parsing commit response: %w", err)
		}
		if len(out.Value) == 0 {
			return "", "", fmt.Errorf("no commit for ref %s: %w", ref, ErrNotFound)
		}
		return out.Value[0].CommitID, ref, nil
	}

	var out struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", "", fmt.Errorf("parsing commit response: %w", err)
	}
	if out.SHA == "" {
		return "", "", fmt.Errorf("no commit for ref %s: %w", ref, ErrNotFound)
	}
	return out.SHA, ref, nil
}

// DownloadTree materializes the full repository tree at ref into destDir.
// The caller is expected to have already pinned ref via ResolveCommit, so
// no branch fallback applies here.
func (f *Fetcher) DownloadTree(ctx context.Context, host githost.Host, repoPath, ref, destDir string) error {
	if host.IsAzure() {
		return f.downloadAzureTree(ctx, host, repoPath, ref, destDir)
	}
	return f.downloadGitHubDir(ctx, host, repoPath, "", ref, destDir)
}

type githubEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

func (f *Fetcher) downloadGitHubDir(ctx context.Context, host githost.Host, repoPath, dir, ref, destDir string) error {
	data, err := f.client.Get(ctx, host.ContentsURL(repoPath, dir, ref), f.headers(host, jsonAccept(host)))
	if err != nil {
		return fmt.Errorf("listing %s/%s@%s: %w", repoPath, dir, ref, err)
	}

	var entries []githubEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing directory listing for %s/%s: %w", repoPath, dir, err)
	}

	for _, e := range entries {
		switch e.Type {
		case "dir":
			if err := f.downloadGitHubDir(ctx, host, repoPath, e.Path, ref, destDir); err != nil {
				return err
			}
		case "file":
			content, _, err := f.FetchFile(ctx, host, repoPath, e.Path, ref)
			if err != nil {
				return err
			}
			if err := writeTreeFile(destDir, e.Path, content); err != nil {
				return err
			}
		default:
			// Symlinks and submodules are not materialized.
		}
	}
	return nil
}

func (f *Fetcher) downloadAzureTree(ctx context.Context, host githost.Host, repoPath, ref, destDir string) error {
	data, err := f.client.Get(ctx, host.ItemsListURL(repoPath, "", ref), f.headers(host, jsonAccept(host)))
	if err != nil {
		return fmt.Errorf("listing %s@%s: %w", repoPath, ref, err)
	}

	var out struct {
		Value []struct {
			Path     string `json:"path"`
			IsFolder bool   `json:"isFolder"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("parsing item listing for %s: %w", repoPath, err)
	}

	for _, item := range out.Value {
		if item.IsFolder {
			continue
		}
		rel := strings.TrimPrefix(item.Path, "/")
		content, _, err := f.FetchFile(ctx, host, repoPath, rel, ref)
		if err != nil {
			return err
		}
		if err := writeTreeFile(destDir, rel, content); err != nil {
			return err
		}
	}
	return nil
}

func writeTreeFile(destDir, relPath string, content []byte) error {
	target := filepath.Join(destDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(target), project.DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, content, project.FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
