package config

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
	"github.com/arthur-debert/template-ci/pkg/manifest"
)

// File names tried in the target directory, in order.
const (
	FileName    = "template-ci.toml"
	DotFileName = ".template-ci.toml"
)

// Resolver finds the configuration source for a project.
type Resolver struct {
	// Manifest answers the last source. Nil means manifest.Auto().
	Manifest manifest.Querier
	// WorkDir is used when no explicit path is given. Empty means the
	// process working directory.
	WorkDir string
}

type target struct {
	dir          string
	files        []string
	manifestPath string
}

// Resolve returns the configuration and the directory generated files are
// rooted at.
//
// explicit may be empty, a directory to look in, a Cargo.toml to query, or
// a configuration file that replaces template-ci.toml. A configuration
// file that is missing or cannot be used is skipped; only the manifest, as
// the last source, reports an error.
func (r *Resolver) Resolve(explicit string) (*Config, string, error) {
	logger := logging.GetLogger("config.resolve")

	t, err := r.target(explicit)
	if err != nil {
		return nil, "", err
	}

	for _, path := range t.files {
		cfg, err := LoadFile(path)
		if err == nil {
			logger.Info().Str("source", path).Msg("Using configuration file")
			return cfg, filepath.Dir(path), nil
		}
		if errors.IsErrorCode(err, errors.ErrConfigNotFound) {
			logger.Debug().Str("path", path).Msg("No configuration file, trying next source")
			continue
		}
		logger.Debug().
			Err(err).
			Interface("source", errors.GetErrorDetails(err)["source"]).
			Msg("Configuration file unusable, trying next source")
	}

	querier := r.Manifest
	if querier == nil {
		querier = manifest.Auto()
	}

	pkg, err := querier.Query(t.dir, t.manifestPath)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrManifestNotFound) {
			return nil, "", errors.Wrapf(err, errors.ErrConfigNotFound,
				"no %s, %s or Cargo.toml metadata found for %s", FileName, DotFileName, t.dir)
		}
		return nil, "", err
	}

	cfg, err := FromMetadata(pkg.Metadata, pkg.ManifestPath)
	if err != nil {
		return nil, "", err
	}
	logger.Info().Str("source", pkg.ManifestPath).Msg("Using package metadata")
	return cfg, pkg.Dir, nil
}

func (r *Resolver) target(explicit string) (target, error) {
	dir := r.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return target{}, errors.Wrap(err, errors.ErrInternal, "cannot determine working directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return target{}, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", dir)
	}

	if explicit == "" {
		return inDir(dir), nil
	}

	if !filepath.IsAbs(explicit) {
		explicit = filepath.Join(dir, explicit)
	}
	info, err := os.Stat(explicit)
	if err != nil {
		return target{}, errors.Wrapf(err, errors.ErrConfigNotFound, "%s does not exist", explicit)
	}
	if info.IsDir() {
		return inDir(explicit), nil
	}

	parent := filepath.Dir(explicit)
	if filepath.Base(explicit) == manifest.FileName {
		t := inDir(parent)
		t.manifestPath = explicit
		return t, nil
	}
	return target{
		dir:   parent,
		files: []string{explicit, filepath.Join(parent, DotFileName)},
	}, nil
}

func inDir(dir string) target {
	return target{
		dir: dir,
		files: []string{
			filepath.Join(dir, FileName),
			filepath.Join(dir, DotFileName),
		},
	}
}
