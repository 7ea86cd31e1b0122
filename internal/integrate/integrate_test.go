package integrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apm-labs/apm/internal/project"
)

func TestToHyphenCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"myPackage", "my-package"},
		{"MyPackage", "my-package"},
		{"my_AwesomePackage", "my-awesome-package"},
		{"my@package!name", "mypackagename"},
		{"my--package", "my-package"},
		{"-mypackage-", "mypackage"},
		{"code review", "code-review"},
		{"already-fine", "already-fine"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToHyphenCase(tt.in); got != tt.want {
				t.Errorf("ToHyphenCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSync_RemovesAllGenerated(t *testing.T) {
	root := t.TempDir()
	dir := project.GitHubPromptsDir(root)
	for _, name := range []string{"a-apm.prompt.md", "b-apm.prompt.md", "c-apm.prompt.md"} {
		writeFile(t, filepath.Join(dir, name), "generated")
	}

	report := New(nil).Sync(root, nil)
	if report.FilesRemoved != 3 {
		t.Errorf("FilesRemoved = %d, want 3", report.FilesRemoved)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), PromptSuffix) {
			t.Errorf("generated file %s survived the pass", e.Name())
		}
	}
}

func TestSync_LeavesUserFilesUntouched(t *testing.T) {
	root := t.TempDir()
	dir := project.GitHubPromptsDir(root)
	writeFile(t, filepath.Join(dir, "gen-apm.prompt.md"), "generated")
	writeFile(t, filepath.Join(dir, "mine.prompt.md"), "user content")
	writeFile(t, filepath.Join(dir, "notes.md"), "user notes")

	report := New(nil).Sync(root, nil)
	if report.FilesRemoved != 1 {
		t.Errorf("FilesRemoved = %d, want 1", report.FilesRemoved)
	}
	if report.Errors != 0 {
		t.Errorf("Errors = %d, want 0", report.Errors)
	}

	for name, want := range map[string]string{"mine.prompt.md": "user content", "notes.md": "user notes"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("user file %s disappeared: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("user file %s content = %q, want %q", name, data, want)
		}
	}
}

func TestSync_IntegratesInstalledArtifacts(t *testing.T) {
	root := t.TempDir()
	pkg := project.InstallPath(root, "owner/repo")
	writeFile(t, filepath.Join(pkg, ".apm", "prompts", "codeReview.prompt.md"), "# Review\n")
	writeFile(t, filepath.Join(pkg, ".apm", "agents", "planner.agent.md"), "# Plan\n")

	report := New(nil).Sync(root, []string{"owner/repo"})
	if report.FilesIntegrated != 2 {
		t.Errorf("FilesIntegrated = %d, want 2", report.FilesIntegrated)
	}

	prompt := filepath.Join(project.GitHubPromptsDir(root), "code-review"+PromptSuffix)
	data, err := os.ReadFile(prompt)
	if err != nil {
		t.Fatalf("generated prompt missing: %v", err)
	}
	if string(data) != "# Review\n" {
		t.Errorf("prompt content = %q, want verbatim copy", data)
	}

	agent := filepath.Join(project.GitHubAgentsDir(root), "planner"+AgentSuffix)
	if _, err := os.Stat(agent); err != nil {
		t.Errorf("generated agent missing: %v", err)
	}
}

func TestSync_ClaudeAgentsWhenOptedIn(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, project.ClaudeDir), 0o755); err != nil {
		t.Fatal(err)
	}
	pkg := project.InstallPath(root, "owner/repo")
	writeFile(t, filepath.Join(pkg, ".apm", "agents", "planner.agent.md"), "# Plan\n")

	New(nil).Sync(root, []string{"owner/repo"})

	claude := filepath.Join(project.ClaudeAgentsDir(root), "planner"+ClaudeAgentSuffix)
	if _, err := os.Stat(claude); err != nil {
		t.Errorf("claude agent missing: %v", err)
	}
}

func TestInstallSkills(t *testing.T) {
	root := t.TempDir()
	pkg := project.InstallPath(root, "owner/repo")
	writeFile(t, filepath.Join(pkg, ".apm", "skills", "Git_Helper", "SKILL.md"), "---\ndescription: Helps with git\n---\nUse git.\n")

	installed, errs := New(nil).InstallSkills(root, pkg)
	if installed != 1 || errs != 0 {
		t.Fatalf("installed = %d errs = %d, want 1/0", installed, errs)
	}

	dest := filepath.Join(project.GitHubSkillsDir(root), "git-helper", "SKILL.md")
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("skill not installed: %v", err)
	}
	if !strings.Contains(string(data), "Use git.") {
		t.Errorf("skill content = %q, want verbatim copy", data)
	}
}

func TestSkillToAgent(t *testing.T) {
	content := []byte("---\ndescription: Reviews pull requests\n---\n# Steps\nDo the review.\n")

	out, err := SkillToAgent("PR Reviewer", "owner/repo", content)
	if err != nil {
		t.Fatalf("SkillToAgent error: %v", err)
	}

	s := string(out)
	for _, want := range []string{
		"name: pr-reviewer",
		"description: Reviews pull requests",
		"source_type: skill",
		"source_dependency: owner/repo",
		"content_hash:",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(strings.SplitN(s, "# Steps", 2)[1], "description: Reviews pull requests") {
		t.Error("skill frontmatter leaked into the body")
	}
	if !strings.Contains(s, "Do the review.") {
		t.Error("body content missing")
	}
}
