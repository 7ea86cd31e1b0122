// Package fetch retrieves package files and full repository trees through
// the git platform content APIs, with DNS-cached transport, per-host
// circuit breaking, and the single main-to-master branch fallback.
package fetch

import (
	"errors"
	"time"

	"github.com/apm-labs/apm/internal/manifest"
	"github.com/apm-labs/apm/internal/refs"
)

var (
	// ErrNotFound is a 404 from the platform API.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a 401 or non-rate-limit 403.
	ErrUnauthorized = errors.New("authentication failed")
	// ErrRateLimited is a 429 or an exhausted rate-limit 403.
	ErrRateLimited = errors.New("rate limited by platform")
	// ErrUpstreamDown is a 5xx or an open circuit breaker.
	ErrUpstreamDown = errors.New("platform unavailable")
	// ErrNoManifest marks a fetched package without a readable apm.yml.
	// The resolver treats such packages as leaves.
	ErrNoManifest = errors.New("package has no readable apm.yml")
)

// PackageInfo is one row of "currently installed": the fetched package
// metadata, where it landed, and what it resolved to. Package is nil when
// the repository carries no readable manifest.
type PackageInfo struct {
	Package     *manifest.Package
	Ref         refs.DependencyReference
	Resolved    refs.ResolvedReference
	InstallPath string
	InstalledAt time.Time
}
