package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func override(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{"plain", "1.2.3", "", "", "attrsync 1.2.3"},
		{"commit is shortened", "1.2.3", "1234567890abcdef1234", "", "attrsync 1.2.3 (commit 1234567890ab)"},
		{"all fields", "0.1.0-dev", "abc123", "2024-01-15T10:30:00Z", "attrsync 0.1.0-dev (commit abc123, built 2024-01-15T10:30:00Z)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override(t, tt.version, tt.commit, tt.date)
			assert.Equal(t, tt.want, Info(false))
		})
	}
}

func TestColoredKeepsText(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	for _, v := range []string{"0.1.0-dev", "1.2.3-rc.1+build.123", "1.0", "nightly"} {
		override(t, v, "", "")
		assert.Equal(t, v, Colored())
	}
}
