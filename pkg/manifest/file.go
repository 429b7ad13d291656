package manifest

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
	toml "github.com/pelletier/go-toml/v2"
)

// FileQuerier decodes Cargo.toml itself. It does not understand workspaces
// or inherited fields, which is fine for reading package.metadata.
type FileQuerier struct{}

type cargoManifest struct {
	Package *struct {
		Name     string                 `toml:"name"`
		Metadata map[string]interface{} `toml:"metadata"`
	} `toml:"package"`
}

// Query implements Querier.
func (q *FileQuerier) Query(dir, manifestPath string) (*Package, error) {
	logger := logging.GetLogger("manifest.file")

	if manifestPath == "" {
		found, err := FindManifest(dir)
		if err != nil {
			return nil, err
		}
		manifestPath = found
	}

	manifestPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestQuery, "cannot resolve %s", manifestPath)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "manifest %s does not exist", manifestPath)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestQuery, "could not read manifest %s", manifestPath)
	}

	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "could not parse manifest %s", manifestPath)
	}
	if m.Package == nil {
		return nil, errors.Newf(errors.ErrManifestParse, "manifest %s has no [package] section", manifestPath).
			WithDetail("path", manifestPath)
	}

	logger.Debug().
		Str("manifest", manifestPath).
		Str("package", m.Package.Name).
		Bool("hasMetadata", m.Package.Metadata != nil).
		Msg("Read package manifest")

	return &Package{
		Dir:          filepath.Dir(manifestPath),
		ManifestPath: manifestPath,
		Metadata:     m.Package.Metadata,
	}, nil
}
