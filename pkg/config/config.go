package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/template-ci/pkg/matrix"
)

// Names of the fixed matrix entries, as used in config documents.
const (
	BenchEntry   = "bench"
	ClippyEntry  = "clippy"
	RustfmtEntry = "rustfmt"
)

// Config is a fully defaulted configuration. It is built once per run and
// treated as read-only afterwards.
type Config struct {
	Bench                   matrix.Entry
	Clippy                  matrix.Entry
	Rustfmt                 matrix.Entry
	AdditionalMatrixEntries map[string]matrix.Entry

	Cache                 string
	OS                    string
	Dist                  string
	Versions              []string
	TestCommandline       string
	ScheduledTestBranches []string
	TestSchedule          string
}

// Default returns the configuration used when a source specifies nothing.
func Default() *Config {
	return &Config{
		Bench:                   matrix.BenchDefaults.Entry(),
		Clippy:                  matrix.ClippyDefaults.Entry(),
		Rustfmt:                 matrix.RustfmtDefaults.Entry(),
		AdditionalMatrixEntries: map[string]matrix.Entry{},
		Cache:                   "cargo",
		OS:                      "linux",
		Dist:                    "xenial",
		Versions:                []string{"stable", "nightly"},
		TestCommandline:         "cargo test --verbose --all",
		ScheduledTestBranches:   []string{"master"},
		// every sunday at 0:00 UTC
		TestSchedule: "0 0 * * 0",
	}
}

// NamedEntry pairs a matrix entry with the name it is rendered under.
type NamedEntry struct {
	Name string
	matrix.Entry
}

// Entries lists every matrix entry: bench, clippy and rustfmt first, then
// the additional entries sorted by name.
func (c *Config) Entries() []NamedEntry {
	entries := []NamedEntry{
		{Name: BenchEntry, Entry: c.Bench},
		{Name: ClippyEntry, Entry: c.Clippy},
		{Name: RustfmtEntry, Entry: c.Rustfmt},
	}

	names := make([]string, 0, len(c.AdditionalMatrixEntries))
	for name := range c.AdditionalMatrixEntries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, NamedEntry{Name: name, Entry: c.AdditionalMatrixEntries[name]})
	}
	return entries
}

// ActiveEntries returns the entries that run on every build.
func (c *Config) ActiveEntries() []NamedEntry {
	return c.filter(func(e matrix.Entry) bool { return e.Run })
}

// ScheduledEntries returns the entries that run on the cron schedule.
func (c *Config) ScheduledEntries() []NamedEntry {
	return c.filter(func(e matrix.Entry) bool { return e.RunCron })
}

// AnyActiveAllowedToFail reports whether some entry both runs and may fail.
func (c *Config) AnyActiveAllowedToFail() bool {
	for _, e := range c.Entries() {
		if e.Run && e.AllowFailure {
			return true
		}
	}
	return false
}

func (c *Config) filter(keep func(matrix.Entry) bool) []NamedEntry {
	var out []NamedEntry
	for _, e := range c.Entries() {
		if keep(e.Entry) {
			out = append(out, e)
		}
	}
	return out
}

var lineBreaks = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Dump renders the configuration on a single line. Maps print in key order,
// so equal configurations always dump identically.
func (c *Config) Dump() string {
	return lineBreaks.Replace(fmt.Sprintf("%+v", *c))
}
