package circleci

import "github.com/arthur-debert/template-ci/pkg/config"

// SpecificFilters is one side of a CircleCI filter.
type SpecificFilters struct {
	Only   []string `yaml:"only,omitempty"`
	Ignore []string `yaml:"ignore,omitempty"`
}

// Filters decides which branches and tags trigger the main workflow.
type Filters struct {
	Branches SpecificFilters `yaml:"branches"`
	Tags     SpecificFilters `yaml:"tags"`
}

// Patterns used by NewFilters.
const (
	TemporaryBranchPattern = `/.*\.tmp/`
	ReleaseTagPattern      = `/^v\d+\.\d+\.\d+.*$/`
)

// NewFilters skips bors' temporary branches and builds release tags. Both
// patterns are fixed; conf is not consulted yet.
func NewFilters(_ *config.Config) Filters {
	return Filters{
		Branches: SpecificFilters{Ignore: []string{TemporaryBranchPattern}},
		Tags:     SpecificFilters{Only: []string{ReleaseTagPattern}},
	}
}
