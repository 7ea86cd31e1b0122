package manifest

import (
	"github.com/apm-labs/apm/internal/refs"
)

// FileName is the manifest file every package carries at its root.
const FileName = "apm.yml"

// Package is a parsed apm.yml manifest.
type Package struct {
	Name         string            `yaml:"name" json:"name"`
	Version      string            `yaml:"version" json:"version"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	Author       string            `yaml:"author,omitempty" json:"author,omitempty"`
	License      string            `yaml:"license,omitempty" json:"license,omitempty"`
	Repository   string            `yaml:"repository,omitempty" json:"repository,omitempty"`
	Homepage     string            `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Tags         []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Scripts      map[string]string `yaml:"scripts,omitempty" json:"scripts,omitempty"`
	Dependencies *Dependencies     `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// apmDeps holds the parsed form of Dependencies.APM, populated at load.
	apmDeps []refs.DependencyReference
}

// Dependencies groups the dependency sections of a manifest. APM entries
// are package specification strings; MCP entries are opaque server names
// handled elsewhere.
type Dependencies struct {
	APM []string `yaml:"apm,omitempty" json:"apm,omitempty"`
	MCP []string `yaml:"mcp,omitempty" json:"mcp,omitempty"`
}

// APMDependencies returns the parsed dependency references declared under
// dependencies.apm, in declaration order.
func (p *Package) APMDependencies() []refs.DependencyReference {
	return p.apmDeps
}

// MCPDependencies returns the raw MCP server entries in declaration order.
func (p *Package) MCPDependencies() []string {
	if p.Dependencies == nil {
		return nil
	}
	return p.Dependencies.MCP
}

// HasAPMDependencies reports whether the manifest declares any APM
// dependencies.
func (p *Package) HasAPMDependencies() bool {
	return len(p.apmDeps) > 0
}
