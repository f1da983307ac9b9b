// Package settings carries build metadata and per-invocation options for the
// formulabar CLI.
package settings

// CliBinaryName is the canonical binary name, also used for config paths.
const CliBinaryName = "formulabar"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// Run holds the options of a single invocation after flags and config are
// merged. Subcommands read it from the command context.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigPath  string
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults used before flags are parsed.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ExitOnError: true,
	}
}

// Interactive reports whether logs must stay off the terminal: the TUI owns
// stdout and stderr, so without a log file nothing is written.
func (r *Run) Interactive() bool {
	return r != nil && r.LogFile == ""
}
