package version

import "testing"

func TestString(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc1234", "2026-01-01T00:00:00Z"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	if got, want := String(), "v1.2.3 (commit abc1234, built 2026-01-01T00:00:00Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Short(); got != "v1.2.3" {
		t.Errorf("Short() = %q, want v1.2.3", got)
	}
	if got := UserAgent(); got != "ferrochat/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
