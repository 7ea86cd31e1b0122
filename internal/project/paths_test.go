package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(ManifestPath(root), []byte("name: x\nversion: 1.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot error: %v", err)
	}
	if got != root {
		t.Errorf("FindRoot = %q, want %q", got, root)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	if _, err := FindRoot(t.TempDir()); err == nil {
		t.Fatal("expected error when no manifest exists")
	}
}

func TestInstallPath(t *testing.T) {
	got := InstallPath("/proj", "owner/repo")
	want := filepath.Join("/proj", ModulesDir, "owner", "repo")
	if got != want {
		t.Errorf("InstallPath = %q, want %q", got, want)
	}
}

func TestEnsureGitignore(t *testing.T) {
	root := t.TempDir()

	if err := EnsureGitignore(root); err != nil {
		t.Fatalf("EnsureGitignore error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, GitignoreFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ModulesDir+"/\n" {
		t.Errorf("gitignore = %q", data)
	}

	// Second call must not duplicate the entry.
	if err := EnsureGitignore(root); err != nil {
		t.Fatalf("EnsureGitignore error: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(root, GitignoreFile))
	if string(data) != ModulesDir+"/\n" {
		t.Errorf("gitignore after second call = %q", data)
	}
}

func TestEnsureGitignore_ExistingContentPreserved(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, GitignoreFile), []byte("node_modules/"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := EnsureGitignore(root); err != nil {
		t.Fatalf("EnsureGitignore error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, GitignoreFile))
	want := "node_modules/\n" + ModulesDir + "/\n"
	if string(data) != want {
		t.Errorf("gitignore = %q, want %q", data, want)
	}
}

func TestHasClaudeDir(t *testing.T) {
	root := t.TempDir()
	if HasClaudeDir(root) {
		t.Error("HasClaudeDir = true for project without .claude/")
	}
	if err := os.Mkdir(filepath.Join(root, ClaudeDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if !HasClaudeDir(root) {
		t.Error("HasClaudeDir = false after creating .claude/")
	}
}
