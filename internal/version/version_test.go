package version

import "testing"

func TestString(t *testing.T) {
	Version, Commit, BuildTime = "1.2.3", "abc1234", "2024-01-15T12:00:00Z"
	t.Cleanup(func() { Version, Commit, BuildTime = "dev", "unknown", "unknown" })

	if got, want := String(), "1.2.3 (abc1234) built 2024-01-15T12:00:00Z"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if info := Get(); info.Commit != "abc1234" {
		t.Errorf("Get().Commit = %q", info.Commit)
	}
}
