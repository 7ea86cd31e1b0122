package refs

import "testing"

func TestParse_ShortForms(t *testing.T) {
	tests := []struct {
		spec string
		repo string
		host string
		ref  string
	}{
		{"owner/repo", "owner/repo", "", ""},
		{"owner/repo#develop", "owner/repo", "", "develop"},
		{"owner/repo#v1.0.0", "owner/repo", "", "v1.0.0"},
		{"owner/repo.git", "owner/repo", "", ""},
		{"github.com/owner/repo", "owner/repo", "github.com", ""},
		{"git.company.com/owner/repo#main", "owner/repo", "git.company.com", "main"},
		{"https://github.com/owner/repo.git", "owner/repo", "github.com", ""},
		{"https://acme.ghe.com/owner/repo", "owner/repo", "acme.ghe.com", ""},
		{"dev.azure.com/org/project/repo", "org/project/repo", "dev.azure.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			dep, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.spec, err)
			}
			if dep.RepoPath != tt.repo {
				t.Errorf("RepoPath = %q, want %q", dep.RepoPath, tt.repo)
			}
			if dep.Host != tt.host {
				t.Errorf("Host = %q, want %q", dep.Host, tt.host)
			}
			if dep.Reference != tt.ref {
				t.Errorf("Reference = %q, want %q", dep.Reference, tt.ref)
			}
			if dep.IsVirtual {
				t.Error("IsVirtual = true, want false")
			}
		})
	}
}

func TestParse_Alias(t *testing.T) {
	dep, err := Parse("owner/repo#v2.1.0@backend")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if dep.Alias != "backend" {
		t.Errorf("Alias = %q, want backend", dep.Alias)
	}
	if dep.Reference != "v2.1.0" {
		t.Errorf("Reference = %q, want v2.1.0", dep.Reference)
	}
	if dep.DisplayName() != "backend" {
		t.Errorf("DisplayName = %q, want backend", dep.DisplayName())
	}
}

func TestParse_SSH(t *testing.T) {
	dep, err := Parse("git@github.com:owner/repo.git#main")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if dep.Host != "github.com" || dep.RepoPath != "owner/repo" || dep.Reference != "main" {
		t.Errorf("got %+v", dep)
	}
}

func TestParse_VirtualFile(t *testing.T) {
	dep, err := Parse("owner/awesome-prompts/prompts/code-review.prompt.md")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !dep.IsVirtual || !dep.IsVirtualFile() {
		t.Fatalf("expected virtual file package, got %+v", dep)
	}
	if dep.RepoPath != "owner/awesome-prompts" {
		t.Errorf("RepoPath = %q", dep.RepoPath)
	}
	if dep.VirtualPath != "prompts/code-review.prompt.md" {
		t.Errorf("VirtualPath = %q", dep.VirtualPath)
	}
	if got, want := dep.VirtualPackageName(), "awesome-prompts-code-review"; got != want {
		t.Errorf("VirtualPackageName = %q, want %q", got, want)
	}
	if got, want := dep.InstallRelPath(), "owner/awesome-prompts-code-review"; got != want {
		t.Errorf("InstallRelPath = %q, want %q", got, want)
	}
}

func TestParse_VirtualCollection(t *testing.T) {
	dep, err := Parse("owner/repo/collections/project-planning")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !dep.IsVirtualCollection() {
		t.Fatalf("expected collection package, got %+v", dep)
	}
	if got, want := dep.VirtualPackageName(), "repo-project-planning"; got != want {
		t.Errorf("VirtualPackageName = %q, want %q", got, want)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"justone",
		"owner/repo/docs/readme.md", // not a recognized virtual extension
		"owner/repo\n#main",
		"owner/re po",
	}

	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			if _, err := Parse(spec); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", spec)
			}
		})
	}
}

func TestUniqueKey(t *testing.T) {
	regular := DependencyReference{RepoPath: "owner/repo"}
	if got := regular.UniqueKey(); got != "owner/repo" {
		t.Errorf("UniqueKey = %q, want owner/repo", got)
	}

	virtual := DependencyReference{RepoPath: "owner/repo", IsVirtual: true, VirtualPath: "prompts/file.md"}
	if got := virtual.UniqueKey(); got != "owner/repo/prompts/file.md" {
		t.Errorf("UniqueKey = %q, want owner/repo/prompts/file.md", got)
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://github.com/Owner/Repo.git", "Owner/Repo"},
		{"https://github.com/owner/repo/", "owner/repo"},
		{"https://gitlab.example.com/group/subgroup/project", "group/subgroup/project"},
		{"owner/repo", "owner/repo"},
		{"owner/repo.git", "owner/repo"},
		{"owner/repo/", "owner/repo"},
		{"https://github.com", "https://github.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeRepoURL(tt.in); got != tt.want {
				t.Errorf("NormalizeRepoURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	// Idempotent: re-normalizing a normalized URL is a no-op.
	norm := NormalizeRepoURL("https://github.com/owner/repo.git")
	if got := NormalizeRepoURL(norm); got != norm {
		t.Errorf("NormalizeRepoURL not idempotent: %q -> %q", norm, got)
	}
}

func TestClassifyRef(t *testing.T) {
	tests := []struct {
		ref      string
		wantType RefType
		wantRef  string
	}{
		{"", RefBranch, "main"},
		{"main", RefBranch, "main"},
		{"feature/thing", RefBranch, "feature/thing"},
		{"v1.2.3", RefTag, "v1.2.3"},
		{"1.0.0", RefTag, "1.0.0"},
		{"abc1234", RefCommit, "abc1234"},
		{"0123456789abcdef0123456789abcdef01234567", RefCommit, "0123456789abcdef0123456789abcdef01234567"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			typ, ref := ClassifyRef(tt.ref)
			if typ != tt.wantType || ref != tt.wantRef {
				t.Errorf("ClassifyRef(%q) = (%v, %q), want (%v, %q)", tt.ref, typ, ref, tt.wantType, tt.wantRef)
			}
		})
	}
}

func TestResolvedReferenceString(t *testing.T) {
	commit := ResolvedReference{Type: RefCommit, ResolvedCommit: "0123456789abcdef", RefName: "0123456"}
	if got := commit.String(); got != "01234567" {
		t.Errorf("String = %q, want 01234567", got)
	}

	branch := ResolvedReference{Type: RefBranch, ResolvedCommit: "0123456789abcdef", RefName: "main"}
	if got := branch.String(); got != "main (01234567)" {
		t.Errorf("String = %q, want %q", got, "main (01234567)")
	}
}
