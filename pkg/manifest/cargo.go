package manifest

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
)

// Runner runs an external command in dir and returns its stdout.
type Runner interface {
	Run(dir, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(dir, name string, args ...string) ([]byte, error) {
	logging.LogCommand(logging.GetLogger("manifest.exec"), name, args)

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, &commandError{err: err, stderr: msg}
		}
		return nil, err
	}
	return out, nil
}

type commandError struct {
	err    error
	stderr string
}

func (e *commandError) Error() string { return e.err.Error() + ": " + e.stderr }
func (e *commandError) Unwrap() error { return e.err }

// CargoQuerier asks `cargo metadata` for the package, so workspaces and
// manifest inheritance are handled by cargo itself.
type CargoQuerier struct {
	Binary string
	Runner Runner
}

// NewCargoQuerier returns a querier running the cargo found on the PATH.
func NewCargoQuerier() *CargoQuerier {
	return &CargoQuerier{Binary: "cargo", Runner: execRunner{}}
}

type cargoMetadata struct {
	Packages []struct {
		Name         string                 `json:"name"`
		ManifestPath string                 `json:"manifest_path"`
		Metadata     map[string]interface{} `json:"metadata"`
	} `json:"packages"`
}

// Query implements Querier. Like cargo itself it reports the first package
// of the metadata document.
func (q *CargoQuerier) Query(dir, manifestPath string) (*Package, error) {
	logger := logging.GetLogger("manifest.cargo")

	args := []string{"metadata", "--format-version", "1", "--no-deps"}
	if manifestPath != "" {
		abs, err := filepath.Abs(manifestPath)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrManifestQuery, "cannot resolve %s", manifestPath)
		}
		manifestPath = abs
		args = append(args, "--manifest-path", manifestPath)
	}

	out, err := q.Runner.Run(dir, q.Binary, args...)
	if err != nil {
		if strings.Contains(err.Error(), "could not find `Cargo.toml`") {
			return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "no Cargo.toml for %s", dir)
		}
		return nil, errors.Wrap(err, errors.ErrManifestQuery, "cargo metadata failed")
	}

	var md cargoMetadata
	if err := json.Unmarshal(out, &md); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "could not parse cargo metadata output")
	}
	if len(md.Packages) == 0 {
		return nil, errors.New(errors.ErrManifestQuery, "cargo metadata reported no packages")
	}

	pkg := md.Packages[0]
	root := filepath.Dir(pkg.ManifestPath)
	if manifestPath != "" {
		root = filepath.Dir(manifestPath)
	} else {
		manifestPath = pkg.ManifestPath
	}

	logger.Debug().
		Str("manifest", manifestPath).
		Str("package", pkg.Name).
		Int("packages", len(md.Packages)).
		Msg("Queried cargo metadata")

	return &Package{
		Dir:          root,
		ManifestPath: manifestPath,
		Metadata:     pkg.Metadata,
	}, nil
}
