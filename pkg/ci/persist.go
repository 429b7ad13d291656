package ci

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
)

// ConfigFileMode is the permission of generated files.
const ConfigFileMode os.FileMode = 0644

// RenderIntoConfigFile validates sys, renders it and replaces its config
// file under root. The file is written to a temporary file in the same
// directory and renamed into place, so the destination is either fully
// replaced or left as it was.
func RenderIntoConfigFile(sys System, root string) error {
	logger := logging.GetLogger("ci.persist")
	done := logging.LogOperationStart(logger, "render "+sys.Name())
	defer done()

	dest := sys.ConfigFileName(root)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "could not create %s", dir).
			WithDetail("path", dir)
	}

	f, err := os.CreateTemp(dir, ".template-ci-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "could not create a temporary file in %s", dir).
			WithDetail("path", dir)
	}
	tempPath := f.Name()

	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if err := sys.Validate(root); err != nil {
		return err
	}

	body, err := sys.Render()
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrRender) {
			return err
		}
		return errors.Wrapf(err, errors.ErrRender, "could not render %s config", sys.Name())
	}
	if err := checkYAML(body); err != nil {
		return errors.Wrapf(err, errors.ErrRender, "%s config is not valid YAML", sys.Name())
	}

	w := bufio.NewWriter(f)
	if err := sys.WritePreamble(w); err != nil {
		return writeError(err, tempPath)
	}
	if _, err := fmt.Fprintln(w, body); err != nil {
		return writeError(err, tempPath)
	}
	if err := w.Flush(); err != nil {
		return writeError(err, tempPath)
	}
	if err := f.Sync(); err != nil {
		return writeError(err, tempPath)
	}
	if err := f.Close(); err != nil {
		return writeError(err, tempPath)
	}
	if err := os.Chmod(tempPath, ConfigFileMode); err != nil {
		return writeError(err, tempPath)
	}

	if err := os.Rename(tempPath, dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileRename, "could not replace %s", dest).
			WithDetail("path", dest)
	}
	committed = true

	logger.Info().Str("path", dest).Str("backend", sys.Name()).Msg("Wrote CI config")
	return nil
}

func writeError(err error, path string) error {
	return errors.Wrapf(err, errors.ErrFileWrite, "could not write %s", path).
		WithDetail("path", path)
}
