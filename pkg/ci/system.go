// Package ci defines what a CI backend provides and the shared operation
// that renders a backend into its configuration file.
package ci

import (
	"fmt"
	"io"

	"github.com/arthur-debert/template-ci/pkg/config"
)

// System is one CI backend built from a resolved configuration.
type System interface {
	// Name is the backend name used on the command line.
	Name() string

	// WritePreamble writes the comment header of the generated file. Only
	// write failures on w are reported.
	WritePreamble(w io.Writer) error

	// Render produces the file body. An error here is a template defect.
	Render() (string, error)

	// Validate checks state outside the configuration, such as other
	// config files in root, before anything is written.
	Validate(root string) error

	// ConfigFileName is where the backend expects its file under root.
	ConfigFileName(root string) string
}

// NoValidation can be embedded by backends without a Validate step.
type NoValidation struct{}

// Validate always succeeds.
func (NoValidation) Validate(string) error { return nil }

// WriteDumpPreamble writes cfg.Dump() as a single comment line.
func WriteDumpPreamble(w io.Writer, cfg *config.Config) error {
	_, err := fmt.Fprintf(w, "# %s\n", cfg.Dump())
	return err
}
