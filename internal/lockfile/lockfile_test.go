package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUniqueKey(t *testing.T) {
	regular := LockedDependency{RepoURL: "owner/repo"}
	if got := regular.UniqueKey(); got != "owner/repo" {
		t.Errorf("UniqueKey = %q, want owner/repo", got)
	}

	virtual := LockedDependency{RepoURL: "owner/repo", IsVirtual: true, VirtualPath: "prompts/file.md"}
	if got := virtual.UniqueKey(); got != "owner/repo/prompts/file.md" {
		t.Errorf("UniqueKey = %q, want owner/repo/prompts/file.md", got)
	}
}

func TestAdd_UpsertsByKey(t *testing.T) {
	lf := New("1.0.0")
	lf.Add(LockedDependency{RepoURL: "owner/repo", ResolvedCommit: "aaa", Depth: 1})
	lf.Add(LockedDependency{RepoURL: "owner/repo", ResolvedCommit: "bbb", Depth: 1})

	if len(lf.Dependencies) != 1 {
		t.Fatalf("Dependencies len = %d, want 1", len(lf.Dependencies))
	}
	if lf.Dependencies[0].ResolvedCommit != "bbb" {
		t.Errorf("ResolvedCommit = %q, want bbb", lf.Dependencies[0].ResolvedCommit)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apm.lock")

	lf := New("1.0.0")
	lf.Add(LockedDependency{RepoURL: "owner/direct", ResolvedCommit: "a1b2c3", Depth: 1, Reference: "main"})
	lf.Add(LockedDependency{RepoURL: "owner/transitive", ResolvedCommit: "d4e5f6", Depth: 2, ResolvedBy: "owner/direct"})
	lf.Add(LockedDependency{RepoURL: "owner/lib", IsVirtual: true, VirtualPath: "prompts/x.prompt.md", ResolvedCommit: "aaa111", Depth: 1})

	if err := lf.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded := Load(path)
	if loaded.LockfileVersion != Version {
		t.Errorf("LockfileVersion = %q, want %q", loaded.LockfileVersion, Version)
	}
	if loaded.GeneratedAt == "" {
		t.Error("GeneratedAt not recorded")
	}
	if len(loaded.Dependencies) != len(lf.Dependencies) {
		t.Fatalf("Dependencies len = %d, want %d", len(loaded.Dependencies), len(lf.Dependencies))
	}
	for _, want := range lf.Dependencies {
		got, ok := loaded.Get(want.UniqueKey())
		if !ok {
			t.Errorf("key %q missing after round trip", want.UniqueKey())
			continue
		}
		if got.ResolvedCommit != want.ResolvedCommit {
			t.Errorf("key %q: ResolvedCommit = %q, want %q", want.UniqueKey(), got.ResolvedCommit, want.ResolvedCommit)
		}
	}
}

func TestLoad_MissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	lf := Load(filepath.Join(dir, "nonexistent.lock"))
	if len(lf.Dependencies) != 0 {
		t.Errorf("missing file: got %d dependencies, want 0", len(lf.Dependencies))
	}

	corrupt := filepath.Join(dir, "corrupt.lock")
	if err := os.WriteFile(corrupt, []byte("{{{ not yaml : ["), 0o644); err != nil {
		t.Fatal(err)
	}
	lf = Load(corrupt)
	if len(lf.Dependencies) != 0 {
		t.Errorf("corrupt file: got %d dependencies, want 0", len(lf.Dependencies))
	}
}

func TestSorted_DepthThenPath(t *testing.T) {
	lf := New("1.0.0")
	// Depth-1 entries declared deliberately out of lexicographic order.
	lf.Add(LockedDependency{RepoURL: "owner/zeta", Depth: 1})
	lf.Add(LockedDependency{RepoURL: "owner/alpha", Depth: 1})
	lf.Add(LockedDependency{RepoURL: "owner/deep-b", Depth: 2, ResolvedBy: "owner/zeta"})
	lf.Add(LockedDependency{RepoURL: "owner/deep-a", Depth: 2, ResolvedBy: "owner/alpha"})
	lf.Add(LockedDependency{RepoURL: "owner/deepest", Depth: 3, ResolvedBy: "owner/deep-a"})

	var got []string
	for _, d := range lf.Sorted() {
		got = append(got, d.RepoURL)
	}
	want := []string{"owner/zeta", "owner/alpha", "owner/deep-a", "owner/deep-b", "owner/deepest"}
	if len(got) != len(want) {
		t.Fatalf("Sorted len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInstalledPaths(t *testing.T) {
	lf := New("1.0.0")
	lf.Add(LockedDependency{RepoURL: "owner/direct", Depth: 1})
	lf.Add(LockedDependency{RepoURL: "owner/mid", Depth: 2, ResolvedBy: "owner/direct"})
	lf.Add(LockedDependency{RepoURL: "owner/leaf", Depth: 3, ResolvedBy: "owner/mid"})
	lf.Add(LockedDependency{RepoURL: "owner/awesome", IsVirtual: true, VirtualPath: "prompts/review.prompt.md", Depth: 1})

	got := lf.InstalledPaths()
	want := []string{"owner/direct", "owner/awesome-review", "owner/mid", "owner/leaf"}
	if len(got) != len(want) {
		t.Fatalf("InstalledPaths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("InstalledPaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInstalledPaths_NoDuplicates(t *testing.T) {
	lf := New("1.0.0")
	lf.Add(LockedDependency{RepoURL: "owner/repo", Depth: 1})
	// Same repo reachable at a deeper level still yields one path.
	lf.Dependencies = append(lf.Dependencies, LockedDependency{RepoURL: "owner/repo", Depth: 2, ResolvedBy: "owner/other"})

	got := lf.InstalledPaths()
	if len(got) != 1 || got[0] != "owner/repo" {
		t.Errorf("InstalledPaths = %v, want [owner/repo]", got)
	}
}

func TestRemove(t *testing.T) {
	lf := New("1.0.0")
	lf.Add(LockedDependency{RepoURL: "owner/repo", Depth: 1})

	if !lf.Remove("owner/repo") {
		t.Error("Remove returned false for present key")
	}
	if lf.Has("owner/repo") {
		t.Error("entry still present after Remove")
	}
	if lf.Remove("owner/repo") {
		t.Error("Remove returned true for absent key")
	}
}
