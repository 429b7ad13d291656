// Package bors reads the bors-ng merge bot configuration and checks that it
// waits for the status checks the generated CI config actually reports.
package bors

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	// FileName is where bors-ng looks for its configuration.
	FileName = "bors.toml"

	// CircleCIStatus is the status reported by the aggregate job of the
	// generated CircleCI workflow.
	CircleCIStatus = "continuous_integration"

	// legacyCircleCIPrefix starts the per-job statuses CircleCI reports on
	// its own. bors cannot wait on them reliably.
	legacyCircleCIPrefix = "ci/circleci:"
)

// Config is the part of bors.toml template-ci cares about.
type Config struct {
	Status []string `toml:"status"`
}

// Load reads bors.toml from root. A missing file is an error: a repository
// being generated for bors is expected to have one.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBorsRead, "could not read bors-ng config %s", path).
			WithDetail("path", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBorsParse, "could not parse bors-ng config %s as TOML", path).
			WithDetail("path", path)
	}

	logger := logging.GetLogger("bors")
	logger.Debug().
		Str("path", path).
		Strs("status", cfg.Status).
		Msg("Loaded bors-ng config")
	return &cfg, nil
}

// CheckCircleCI rejects status lists that would make bors wait forever on
// a CircleCI build.
func CheckCircleCI(cfg *Config) error {
	for _, name := range cfg.Status {
		if strings.HasPrefix(name, legacyCircleCIPrefix) {
			return errors.Newf(errors.ErrBadStatusCheck, "Bad status check %q: Use %q", name, CircleCIStatus).
				WithDetail("status", name)
		}
	}

	for _, name := range cfg.Status {
		if name == CircleCIStatus {
			return nil
		}
	}
	return errors.Newf(errors.ErrMissingStatusCheck, "Missing status check %q", CircleCIStatus).
		WithDetail("status", CircleCIStatus)
}
