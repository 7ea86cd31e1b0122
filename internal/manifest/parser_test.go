package manifest

import (
	"path/filepath"
	"testing"
)

const testdataDir = "testdata"

func testPath(name string) string {
	return filepath.Join(testdataDir, name)
}

func TestLoad_Full(t *testing.T) {
	pkg, warnings, err := Load(testPath("valid-full.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if pkg.Name != "design-system-prompts" {
		t.Errorf("Name = %q", pkg.Name)
	}
	if pkg.Version != "1.4.0" {
		t.Errorf("Version = %q", pkg.Version)
	}
	if pkg.License != "MIT" {
		t.Errorf("License = %q", pkg.License)
	}
	if got := pkg.Scripts["lint"]; got != "markdownlint .apm" {
		t.Errorf("Scripts[lint] = %q", got)
	}

	deps := pkg.APMDependencies()
	if len(deps) != 3 {
		t.Fatalf("APMDependencies len = %d, want 3", len(deps))
	}
	if deps[0].RepoPath != "acme/shared-prompts" {
		t.Errorf("deps[0].RepoPath = %q", deps[0].RepoPath)
	}
	if deps[1].Reference != "v2.0.0" || deps[1].Alias != "reviews" {
		t.Errorf("deps[1] = %+v", deps[1])
	}
	if !deps[2].IsVirtual {
		t.Errorf("deps[2] should be virtual: %+v", deps[2])
	}

	mcp := pkg.MCPDependencies()
	if len(mcp) != 1 || mcp[0] != "github-mcp-server" {
		t.Errorf("MCPDependencies = %v", mcp)
	}
}

func TestLoad_Minimal(t *testing.T) {
	pkg, warnings, err := Load(testPath("valid-minimal.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if pkg.HasAPMDependencies() {
		t.Error("HasAPMDependencies = true for manifest with no dependencies")
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	for _, file := range []string{"invalid-missing-name.yaml", "invalid-missing-version.yaml"} {
		t.Run(file, func(t *testing.T) {
			if _, _, err := Load(testPath(file)); err == nil {
				t.Errorf("Load(%s) expected error, got nil", file)
			}
		})
	}
}

func TestLoad_BadDependencyIsFatal(t *testing.T) {
	_, _, err := Load(testPath("invalid-bad-dependency.yaml"))
	if err == nil {
		t.Fatal("expected error for unparseable dependency")
	}
}

func TestLoad_NonSemverVersionWarns(t *testing.T) {
	pkg, warnings, err := Load(testPath("warn-version.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if pkg.Version != "latest" {
		t.Errorf("Version = %q", pkg.Version)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
}

func TestLoad_NotFound(t *testing.T) {
	if _, _, err := Load(testPath("nonexistent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
