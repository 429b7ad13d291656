package config

import (
	"github.com/arthur-debert/template-ci/pkg/matrix"
)

// Source is a configuration document as parsed, before defaulting. Nil
// fields were absent from the document.
type Source struct {
	Bench                   *matrix.Source            `koanf:"bench"`
	Clippy                  *matrix.Source            `koanf:"clippy"`
	Rustfmt                 *matrix.Source            `koanf:"rustfmt"`
	AdditionalMatrixEntries map[string]*matrix.Source `koanf:"additional_matrix_entries"`

	Cache                 *string   `koanf:"cache"`
	OS                    *string   `koanf:"os"`
	Dist                  *string   `koanf:"dist"`
	Versions              *[]string `koanf:"versions"`
	TestCommandline       *string   `koanf:"test_commandline"`
	ScheduledTestBranches *[]string `koanf:"scheduled_test_branches"`
	TestSchedule          *string   `koanf:"test_schedule"`
}

// Resolve fills every absent field from Default. A nil Source resolves to
// the default configuration.
func (s *Source) Resolve() *Config {
	cfg := Default()
	if s == nil {
		return cfg
	}

	cfg.Bench = matrix.Merge(matrix.BenchDefaults, s.Bench)
	cfg.Clippy = matrix.Merge(matrix.ClippyDefaults, s.Clippy)
	cfg.Rustfmt = matrix.Merge(matrix.RustfmtDefaults, s.Rustfmt)
	for name, src := range s.AdditionalMatrixEntries {
		cfg.AdditionalMatrixEntries[name] = matrix.Merge(matrix.CustomDefaults, src)
	}

	setString(&cfg.Cache, s.Cache)
	setString(&cfg.OS, s.OS)
	setString(&cfg.Dist, s.Dist)
	setString(&cfg.TestCommandline, s.TestCommandline)
	setString(&cfg.TestSchedule, s.TestSchedule)
	if s.Versions != nil {
		cfg.Versions = append([]string{}, *s.Versions...)
	}
	if s.ScheduledTestBranches != nil {
		cfg.ScheduledTestBranches = append([]string{}, *s.ScheduledTestBranches...)
	}
	return cfg
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
