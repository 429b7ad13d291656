package matrix

import (
	"fmt"
	"time"
)

// FailingCommandline is used when no command is configured anywhere, so an
// empty entry shows up as a red build instead of a silent pass.
const FailingCommandline = "/bin/false"

// Entry is one fully defaulted matrix entry.
type Entry struct {
	Run                bool
	RunCron            bool
	Version            string
	InstallCommandline string
	Commandline        string
	Timeout            time.Duration
	AllowFailure       bool
}

// HasInstall reports whether the entry has an install step.
func (e Entry) HasInstall() bool {
	return e.InstallCommandline != ""
}

// TimeoutString renders the timeout as whole seconds ("90s"), or "" if unset.
func (e Entry) TimeoutString() string {
	if e.Timeout <= 0 {
		return ""
	}
	return fmt.Sprintf("%ds", int64(e.Timeout/time.Second))
}

// Source is a partially specified entry as read from a config document.
// A nil field means the key was absent.
type Source struct {
	Run                *bool          `koanf:"run"`
	RunCron            *bool          `koanf:"run_cron"`
	Version            *string        `koanf:"version"`
	InstallCommandline *string        `koanf:"install_commandline"`
	Commandline        *string        `koanf:"commandline"`
	Timeout            *time.Duration `koanf:"timeout"`
	AllowFailure       *bool          `koanf:"allow_failure"`
}

// Defaults holds the compiled-in values for one role. An empty
// InstallCommandline means no install step, an empty Commandline means the
// role has no default command.
type Defaults struct {
	Run                bool
	Version            string
	InstallCommandline string
	Commandline        string
}

var (
	// BenchDefaults runs the benchmarks on nightly, off unless enabled.
	BenchDefaults = Defaults{
		Run:         false,
		Version:     "nightly",
		Commandline: "cargo bench",
	}
	// ClippyDefaults lints with warnings as errors.
	ClippyDefaults = Defaults{
		Run:                true,
		Version:            "stable",
		InstallCommandline: "rustup component add clippy",
		Commandline:        "cargo clippy -- -D warnings",
	}
	// RustfmtDefaults checks formatting without rewriting files.
	RustfmtDefaults = Defaults{
		Run:                true,
		Version:            "stable",
		InstallCommandline: "rustup component add rustfmt",
		Commandline:        "cargo fmt -v -- --check",
	}
	// CustomDefaults applies to additional_matrix_entries. There is no
	// default command, so an entry without one gets FailingCommandline.
	CustomDefaults = Defaults{
		Run:     false,
		Version: "stable",
	}
)

// Entry returns the entry made of the defaults alone.
func (d Defaults) Entry() Entry {
	return Merge(d, nil)
}

// Merge builds an entry from the role defaults and the fields present in src.
// Each field falls back to its default independently. src may be nil.
func Merge(d Defaults, src *Source) Entry {
	e := Entry{
		Run:                d.Run,
		Version:            d.Version,
		InstallCommandline: d.InstallCommandline,
		Commandline:        d.Commandline,
	}

	if src != nil {
		if src.Run != nil {
			e.Run = *src.Run
		}
		if src.RunCron != nil {
			e.RunCron = *src.RunCron
		}
		if src.Version != nil {
			e.Version = *src.Version
		}
		if src.InstallCommandline != nil {
			e.InstallCommandline = *src.InstallCommandline
		}
		if src.Commandline != nil {
			e.Commandline = *src.Commandline
		}
		if src.Timeout != nil {
			e.Timeout = *src.Timeout
		}
		if src.AllowFailure != nil {
			e.AllowFailure = *src.AllowFailure
		}
	}

	if e.Commandline == "" {
		e.Commandline = FailingCommandline
	}
	return e
}
