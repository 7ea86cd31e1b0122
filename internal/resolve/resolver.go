// Package resolve walks the declared dependency graph breadth-first,
// discovering transitive dependencies from each fetched package's own
// declarations and producing the depth-annotated installation record the
// lock file persists.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/apm-labs/apm/internal/fetch"
	"github.com/apm-labs/apm/internal/lockfile"
	"github.com/apm-labs/apm/internal/refs"
)

// LeafReason says why a package contributed no transitive edges.
type LeafReason string

const (
	// LeafNone marks a package whose declarations were read normally.
	LeafNone LeafReason = ""
	// LeafNoDependencies marks a package with a manifest but nothing declared.
	LeafNoDependencies LeafReason = "no_dependencies"
	// LeafNoManifest marks a transitive package installed without a
	// readable apm.yml. A direct one aborts the pass instead.
	LeafNoManifest LeafReason = "no_manifest"
	// LeafFetchFailed marks a transitive package that could not be fetched.
	LeafFetchFailed LeafReason = "fetch_failed"
	// LeafVirtual marks a virtual package; they never declare dependencies.
	LeafVirtual LeafReason = "virtual"
)

// Resolution is one visited node of the dependency graph.
type Resolution struct {
	Dep        refs.DependencyReference
	Info       *fetch.PackageInfo // nil when the fetch itself failed
	Depth      int
	ResolvedBy string // normalized repo path of the parent; empty at depth 1
	Leaf       LeafReason
	Err        error // set for fetch_failed leaves
}

// Result is a completed resolution pass.
type Result struct {
	Resolutions []Resolution
}

// Installed returns the resolutions that materialized on disk.
func (r *Result) Installed() []Resolution {
	var out []Resolution
	for _, res := range r.Resolutions {
		if res.Info != nil {
			out = append(out, res)
		}
	}
	return out
}

// Failures returns the resolutions that could not be fetched.
func (r *Result) Failures() []Resolution {
	var out []Resolution
	for _, res := range r.Resolutions {
		if res.Leaf == LeafFetchFailed {
			out = append(out, res)
		}
	}
	return out
}

// Lock builds the lock document for this pass. Only materialized
// resolutions are recorded; fetch failures leave no lock entry.
func (r *Result) Lock(apmVersion string) *lockfile.LockFile {
	lf := lockfile.New(apmVersion)
	for _, res := range r.Resolutions {
		if res.Info == nil {
			continue
		}
		lf.Add(lockfile.LockedDependency{
			RepoURL:        res.Dep.RepoPath,
			Host:           res.Dep.Host,
			Reference:      res.Dep.Reference,
			ResolvedCommit: res.Info.Resolved.ResolvedCommit,
			Depth:          res.Depth,
			ResolvedBy:     res.ResolvedBy,
			VirtualPath:    res.Dep.VirtualPath,
			IsVirtual:      res.Dep.IsVirtual,
			Alias:          res.Dep.Alias,
		})
	}
	return lf
}

// Children groups resolutions by their parent repo path for tree
// rendering. Depth-1 entries appear under the empty key.
func (r *Result) Children() map[string][]Resolution {
	out := make(map[string][]Resolution)
	for _, res := range r.Resolutions {
		out[res.ResolvedBy] = append(out[res.ResolvedBy], res)
	}
	return out
}

// Resolver drives the breadth-first dependency walk.
type Resolver struct {
	fetcher *fetch.Fetcher
	logger  *log.Logger
}

// New builds a Resolver. A nil logger discards output.
func New(fetcher *fetch.Fetcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

type queueItem struct {
	dep        refs.DependencyReference
	depth      int
	resolvedBy string
}

// Resolve fetches the direct dependencies and everything they pull in.
// Traversal is breadth-first; a dependency already visited by unique key
// is not re-enqueued, so the first discovery determines its depth and
// provenance. A direct dependency that fails to fetch or lacks a
// readable apm.yml aborts the pass; a transitive one becomes a leaf and
// the pass continues.
func (r *Resolver) Resolve(ctx context.Context, projectRoot string, direct []refs.DependencyReference) (*Result, error) {
	result := &Result{}
	visited := make(map[string]bool)

	queue := make([]queueItem, 0, len(direct))
	for _, dep := range direct {
		key := dep.UniqueKey()
		if visited[key] {
			continue
		}
		visited[key] = true
		queue = append(queue, queueItem{dep: dep, depth: 1})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		r.logger.Debug("resolving dependency",
			"package", item.dep.DisplayName(), "depth", item.depth, "resolved_by", item.resolvedBy)

		info, err := r.fetcher.Install(ctx, projectRoot, item.dep)
		res := Resolution{
			Dep:        item.dep,
			Info:       info,
			Depth:      item.depth,
			ResolvedBy: item.resolvedBy,
		}

		switch {
		case err != nil && errors.Is(err, fetch.ErrNoManifest):
			if item.depth == 1 {
				// An explicitly declared package must carry a readable
				// apm.yml; its partial install is removed.
				if info != nil {
					os.RemoveAll(info.InstallPath)
				}
				return nil, fmt.Errorf("resolving direct dependency %s: %w", item.dep.DisplayName(), err)
			}
			res.Leaf = LeafNoManifest
			r.logger.Warn("package has no readable manifest, treating as leaf",
				"package", item.dep.DisplayName())

		case err != nil:
			if item.depth == 1 {
				return nil, fmt.Errorf("resolving direct dependency %s: %w", item.dep.DisplayName(), err)
			}
			res.Leaf = LeafFetchFailed
			res.Err = err
			r.logger.Warn("transitive dependency failed to fetch, treating as leaf",
				"package", item.dep.DisplayName(), "error", err)

		case item.dep.IsVirtual:
			res.Leaf = LeafVirtual

		case info.Package == nil || !info.Package.HasAPMDependencies():
			res.Leaf = LeafNoDependencies

		default:
			parent := refs.NormalizeRepoURL(item.dep.RepoPath)
			for _, child := range info.Package.APMDependencies() {
				key := child.UniqueKey()
				if visited[key] {
					continue
				}
				visited[key] = true
				queue = append(queue, queueItem{dep: child, depth: item.depth + 1, resolvedBy: parent})
			}
		}

		result.Resolutions = append(result.Resolutions, res)
	}

	return result, nil
}
