// Package version holds build metadata, overridable via -ldflags -X.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with its major, minor and patch parts colored.
// Versions that are not dotted triples are returned as is.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

// Info is the one-line description printed by the version command.
func Info(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	out := "attrsync " + v
	var meta []string
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		meta = append(meta, "commit "+commit)
	}
	if BuildDate != "" {
		meta = append(meta, "built "+BuildDate)
	}
	if len(meta) > 0 {
		out += " (" + strings.Join(meta, ", ") + ")"
	}
	return out
}
