// Package circleci renders .circleci/config.yml and checks that bors-ng
// waits for the status the generated workflow reports.
package circleci

import (
	"embed"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"text/template"

	"github.com/arthur-debert/template-ci/pkg/bors"
	"github.com/arthur-debert/template-ci/pkg/ci"
	"github.com/arthur-debert/template-ci/pkg/config"
	"github.com/arthur-debert/template-ci/pkg/logging"
)

// Name selects this backend on the command line.
const Name = "circleci"

// ConfigDir and FileName locate the CircleCI config under the root.
const (
	ConfigDir = ".circleci"
	FileName  = "config.yml"
)

const cacheKey = `cargo-v1-<< parameters.version >>-{{ checksum "Cargo.toml" }}`

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(ci.ParseTemplates(templatesFS, "templates/*.tmpl"))

// Config is the CircleCI backend.
type Config struct {
	conf    *config.Config
	Filters Filters
}

var _ ci.System = (*Config)(nil)

// New builds the backend for conf and computes its filters.
func New(conf *config.Config) *Config {
	return &Config{
		conf:    conf,
		Filters: NewFilters(conf),
	}
}

// Name implements ci.System.
func (c *Config) Name() string { return Name }

// WritePreamble implements ci.System.
func (c *Config) WritePreamble(w io.Writer) error {
	return ci.WriteDumpPreamble(w, c.conf)
}

// ConfigFileName implements ci.System.
func (c *Config) ConfigFileName(root string) string {
	return filepath.Join(root, ConfigDir, FileName)
}

// Validate reads bors.toml from root and rejects status lists bors could
// never satisfy with this config. A missing bors.toml is an error.
func (c *Config) Validate(root string) error {
	cfg, err := bors.Load(root)
	if err != nil {
		return err
	}
	if err := bors.CheckCircleCI(cfg); err != nil {
		return err
	}
	logger := logging.GetLogger("circleci")
	logger.Debug().Str("root", root).Msg("bors-ng status checks are compatible")
	return nil
}

// Job is one job of the generated config.
type Job struct {
	ID         string
	Title      string
	Version    string
	Install    string
	Command    string
	Timeout    string
	OnPush     bool
	OnSchedule bool
}

// Jobs lists the test job of every toolchain version, then every matrix
// entry that runs on push or on schedule. IDs are unique.
func (c *Config) Jobs() []Job {
	seen := map[string]bool{bors.CircleCIStatus: true}
	var jobs []Job

	for _, version := range c.conf.Versions {
		jobs = append(jobs, Job{
			ID:         uniqueID(seen, "test_"+version),
			Title:      "Test",
			Version:    version,
			Command:    c.conf.TestCommandline,
			OnPush:     true,
			OnSchedule: true,
		})
	}

	for _, e := range c.conf.Entries() {
		if !e.Run && !e.RunCron {
			continue
		}
		jobs = append(jobs, Job{
			ID:         uniqueID(seen, e.Name),
			Title:      e.Name,
			Version:    e.Version,
			Install:    e.InstallCommandline,
			Command:    e.Commandline,
			Timeout:    e.TimeoutString(),
			OnPush:     e.Run,
			OnSchedule: e.Run || e.RunCron,
		})
	}
	return jobs
}

var invalidIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func uniqueID(seen map[string]bool, name string) string {
	base := invalidIDChars.ReplaceAllString(name, "_")
	id := base
	for n := 2; seen[id]; n++ {
		id = base + "_" + strconv.Itoa(n)
	}
	seen[id] = true
	return id
}

// Render implements ci.System. Workflow lists that would be empty are left
// out, since CircleCI rejects null job and branch lists.
func (c *Config) Render() (string, error) {
	jobs := c.Jobs()
	var pushJobs, scheduledJobs []Job
	for _, job := range jobs {
		if job.OnPush {
			pushJobs = append(pushJobs, job)
		}
		if job.OnSchedule {
			scheduledJobs = append(scheduledJobs, job)
		}
	}

	return ci.Execute(templates, "circleci.yml.tmpl", struct {
		Conf          *config.Config
		Jobs          []Job
		PushJobs      []Job
		ScheduledJobs []Job
		Filters       Filters
		AggregateJob  string
		CargoCache    bool
		CacheKey      string
	}{
		Conf:          c.conf,
		Jobs:          jobs,
		PushJobs:      pushJobs,
		ScheduledJobs: scheduledJobs,
		Filters:       c.Filters,
		AggregateJob:  bors.CircleCIStatus,
		CargoCache:    c.conf.Cache == "cargo",
		CacheKey:      cacheKey,
	})
}
