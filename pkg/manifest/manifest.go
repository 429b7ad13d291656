// Package manifest reads the `[package.metadata]` section of a Cargo
// manifest. Two queriers exist: one that asks `cargo metadata` and one that
// decodes Cargo.toml directly for machines without a Rust toolchain.
package manifest

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/arthur-debert/template-ci/pkg/errors"
)

// FileName is the name cargo gives every package manifest.
const FileName = "Cargo.toml"

// Package is what a Querier learns about the package owning a directory.
type Package struct {
	// Dir is the directory holding the manifest; it becomes the resolution root.
	Dir          string
	ManifestPath string
	// Metadata is the package.metadata table, nil when the manifest has none.
	Metadata map[string]interface{}
}

// Querier locates the package manifest for dir, or reads manifestPath
// directly when it is not empty.
type Querier interface {
	Query(dir, manifestPath string) (*Package, error)
}

// Auto returns a CargoQuerier when cargo is on the PATH and a FileQuerier
// otherwise.
func Auto() Querier {
	if _, err := exec.LookPath("cargo"); err == nil {
		return NewCargoQuerier()
	}
	return &FileQuerier{}
}

// FindManifest walks up from dir until it finds a Cargo.toml.
func FindManifest(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrManifestNotFound, "cannot resolve %s", dir)
	}

	for {
		candidate := filepath.Join(current, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.Newf(errors.ErrManifestNotFound, "could not find %s in %s or any parent directory", FileName, dir)
		}
		current = parent
	}
}
