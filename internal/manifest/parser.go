package manifest

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"

	"github.com/apm-labs/apm/internal/refs"
)

// Load reads an apm.yml file, checks required fields, and parses every
// declared APM dependency. A dependency that fails to parse is fatal;
// non-semver versions are reported as warnings on the result, not errors.
func Load(path string) (*Package, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses raw apm.yml bytes. The path is used only for error
// messages.
func Parse(data []byte, path string) (*Package, []string, error) {
	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if pkg.Name == "" {
		return nil, nil, fmt.Errorf("%s: missing required field 'name'", path)
	}
	if pkg.Version == "" {
		return nil, nil, fmt.Errorf("%s: missing required field 'version'", path)
	}

	var warnings []string
	if _, err := semver.NewVersion(pkg.Version); err != nil {
		warnings = append(warnings, fmt.Sprintf("version %q is not semantic versioning", pkg.Version))
	}

	if pkg.Dependencies != nil {
		for _, spec := range pkg.Dependencies.APM {
			dep, err := refs.Parse(spec)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: invalid dependency %q: %w", path, spec, err)
			}
			pkg.apmDeps = append(pkg.apmDeps, dep)
		}
	}

	return &pkg, warnings, nil
}

// Write marshals the manifest back to YAML at path.
func (p *Package) Write(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
