package version

import "testing"

func TestGetDefaults(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	Version, Commit, BuildDate = "", "", ""

	info := Get()
	if info.Version != "dev" || info.Commit != "dev" || info.BuildDate != "dev" {
		t.Fatalf("expected dev defaults, got %+v", info)
	}
	if info.Name != Name {
		t.Fatalf("expected name %s, got %s", Name, info.Name)
	}
}

func TestStringUsesOverrides(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	Version, Commit, BuildDate = "v1.0.0", "abc123", "2026-10-16"

	got := Get().String()
	want := "agentic-mcp-server v1.0.0 (commit abc123, built 2026-10-16)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
