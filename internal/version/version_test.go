package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{name: "dev build", version: "dev", commit: "unknown", date: "unknown", want: "themekit version dev ("},
		{name: "release", version: "1.2.0", commit: "0123456789abcdef", date: "2026-10-19T12:00:00Z", want: "commit: 01234567, built: 2026-10-19T12:00:00Z"},
		{name: "short commit", version: "1.2.0", commit: "abc", date: "2026-10-19T12:00:00Z", want: "commit: abc,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, tt.commit, tt.date
			if got := String(); !strings.Contains(got, tt.want) {
				t.Errorf("String() = %q, want it to contain %q", got, tt.want)
			}
			if Short() != tt.version {
				t.Errorf("Short() = %q, want %q", Short(), tt.version)
			}
		})
	}
}
