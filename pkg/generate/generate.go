// Package generate ties configuration resolution to a CI backend and
// writes the backend's config file.
package generate

import (
	"strings"

	"github.com/arthur-debert/template-ci/pkg/ci"
	"github.com/arthur-debert/template-ci/pkg/ci/circleci"
	"github.com/arthur-debert/template-ci/pkg/ci/travis"
	"github.com/arthur-debert/template-ci/pkg/config"
	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
	"github.com/arthur-debert/template-ci/pkg/manifest"
)

// DefaultBackend is used when no backend is named.
const DefaultBackend = travis.Name

// Backends lists the supported backend names.
func Backends() []string {
	return []string{travis.Name, circleci.Name}
}

// NewSystem builds the named backend for conf.
func NewSystem(name string, conf *config.Config) (ci.System, error) {
	switch name {
	case travis.Name:
		return travis.New(conf), nil
	case circleci.Name:
		return circleci.New(conf), nil
	}
	return nil, errors.Newf(errors.ErrUnknownBackend, "unknown CI backend %q (expected one of: %s)",
		name, strings.Join(Backends(), ", ")).
		WithDetail("backend", name)
}

// Options controls a Run.
type Options struct {
	// Backend is a name from Backends. Empty means DefaultBackend.
	Backend string
	// Path is the optional explicit path given to config.Resolver.
	Path string
	// WorkDir and Manifest are passed to config.Resolver.
	WorkDir  string
	Manifest manifest.Querier
}

// Result describes the file a Run wrote.
type Result struct {
	Backend string
	Root    string
	Path    string
	Config  *config.Config
}

// Run resolves the configuration, builds the backend and renders it into
// its config file.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("generate")

	backend := opts.Backend
	if backend == "" {
		backend = DefaultBackend
	}

	// Reject a bad backend name before touching the project.
	if _, err := NewSystem(backend, config.Default()); err != nil {
		return nil, err
	}

	resolver := &config.Resolver{Manifest: opts.Manifest, WorkDir: opts.WorkDir}
	conf, root, err := resolver.Resolve(opts.Path)
	if err != nil {
		return nil, err
	}

	sys, err := NewSystem(backend, conf)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("backend", backend).
		Str("root", root).
		Msg("Generating CI config")

	if err := ci.RenderIntoConfigFile(sys, root); err != nil {
		return nil, err
	}

	return &Result{
		Backend: backend,
		Root:    root,
		Path:    sys.ConfigFileName(root),
		Config:  conf,
	}, nil
}
