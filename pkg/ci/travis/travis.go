// Package travis renders .travis.yml.
package travis

import (
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/arthur-debert/template-ci/pkg/ci"
	"github.com/arthur-debert/template-ci/pkg/config"
)

// Name selects this backend on the command line.
const Name = "travis"

// FileName is the Travis config file at the repository root.
const FileName = ".travis.yml"

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(ci.ParseTemplates(templatesFS, "templates/*.tmpl"))

// Config is the Travis backend. Travis has nothing to cross-check, so it
// keeps the no-op Validate.
type Config struct {
	ci.NoValidation
	conf *config.Config
}

var _ ci.System = (*Config)(nil)

// New builds the backend for conf.
func New(conf *config.Config) *Config {
	return &Config{conf: conf}
}

// Name implements ci.System.
func (c *Config) Name() string { return Name }

// WritePreamble implements ci.System.
func (c *Config) WritePreamble(w io.Writer) error {
	return ci.WriteDumpPreamble(w, c.conf)
}

// Render implements ci.System.
func (c *Config) Render() (string, error) {
	return ci.Execute(templates, "travis.yml.tmpl", struct {
		Conf          *config.Config
		CronCondition string
	}{
		Conf:          c.conf,
		CronCondition: c.CronCondition(),
	})
}

// ConfigFileName implements ci.System.
func (c *Config) ConfigFileName(root string) string {
	return filepath.Join(root, FileName)
}

// CronCondition is the Travis build condition limiting scheduled entries to
// cron builds of the scheduled branches.
func (c *Config) CronCondition() string {
	if len(c.conf.ScheduledTestBranches) == 0 {
		return "type = cron"
	}
	return fmt.Sprintf("type = cron AND branch IN (%s)", strings.Join(c.conf.ScheduledTestBranches, ", "))
}
