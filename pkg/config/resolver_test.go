package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/manifest"
	"github.com/arthur-debert/template-ci/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuerier implements manifest.Querier for testing
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Query(dir, manifestPath string) (*manifest.Package, error) {
	args := m.Called(dir, manifestPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manifest.Package), args.Error(1)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolveSourcePrecedence(t *testing.T) {
	t.Run("template-ci.toml beats .template-ci.toml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), `os = "primary"`)
		writeFile(t, filepath.Join(dir, DotFileName), `os = "dotfile"`)
		querier := new(MockQuerier)

		cfg, root, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "primary", cfg.OS)
		assert.Equal(t, dir, root)
		querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run(".template-ci.toml beats the manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, DotFileName), `os = "dotfile"`)
		querier := new(MockQuerier)

		cfg, root, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "dotfile", cfg.OS)
		assert.Equal(t, dir, root)
		querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run("manifest is the last resort", func(t *testing.T) {
		dir := t.TempDir()
		querier := new(MockQuerier)
		querier.On("Query", dir, "").Return(&manifest.Package{
			Dir:          "/project",
			ManifestPath: "/project/Cargo.toml",
			Metadata: map[string]interface{}{
				"template_ci": map[string]interface{}{"os": "foo"},
			},
		}, nil)

		cfg, root, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "foo", cfg.OS)
		assert.Equal(t, Default().Dist, cfg.Dist)
		assert.Equal(t, "/project", root)
		querier.AssertExpectations(t)
	})
}

func TestResolveManifestWithoutConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
	}{
		{"no metadata", nil},
		{"unrelated metadata", map[string]interface{}{"foo": map[string]interface{}{"bar": "baz"}}},
		{"null template_ci", map[string]interface{}{"template_ci": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			querier := new(MockQuerier)
			querier.On("Query", dir, "").Return(&manifest.Package{
				Dir:          dir,
				ManifestPath: filepath.Join(dir, "Cargo.toml"),
				Metadata:     tt.metadata,
			}, nil)

			cfg, root, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
			require.NoError(t, err)
			assert.Equal(t, Default(), cfg)
			assert.Equal(t, dir, root)
		})
	}
}

func TestResolveWithRealManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), `
[package]
name = "testing"
version = "0.0.1"

[package.metadata.template_ci.additional_matrix_entries.something_custom]
name = "custom_templated_run"
install_commandline='echo "installing for custom tests"'
commandline='echo "running custom tests"'
timeout={secs = 90, nanos = 0}
`)

	cfg, root, err := (&Resolver{Manifest: &manifest.FileQuerier{}, WorkDir: dir}).Resolve("")
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	custom, ok := cfg.AdditionalMatrixEntries["something_custom"]
	require.True(t, ok)
	assert.Equal(t, matrix.Entry{
		Run:                false,
		Version:            "stable",
		InstallCommandline: `echo "installing for custom tests"`,
		Commandline:        `echo "running custom tests"`,
		Timeout:            90 * time.Second,
	}, custom)
}

func TestResolveTimeoutForms(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"integer seconds", `timeout = 90`, 90 * time.Second},
		{"duration string", `timeout = "2m"`, 2 * time.Minute},
		{"secs and nanos", `timeout = {secs = 90, nanos = 500}`, 90*time.Second + 500},
		{"secs only", `timeout = {secs = 30}`, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, FileName), "[bench]\n"+tt.timeout+"\n")

			cfg, _, err := (&Resolver{Manifest: new(MockQuerier), WorkDir: dir}).Resolve("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Bench.Timeout)
			assert.Equal(t, "cargo bench", cfg.Bench.Commandline)
		})
	}
}

func TestResolveMetadataFromCargoJSON(t *testing.T) {
	// cargo metadata hands numbers over as float64
	dir := t.TempDir()
	querier := new(MockQuerier)
	querier.On("Query", dir, "").Return(&manifest.Package{
		Dir:          dir,
		ManifestPath: filepath.Join(dir, "Cargo.toml"),
		Metadata: map[string]interface{}{
			"template_ci": map[string]interface{}{
				"clippy": map[string]interface{}{
					"version": "nightly",
					"timeout": map[string]interface{}{"secs": float64(120), "nanos": float64(0)},
				},
				"versions": []interface{}{"stable"},
			},
		},
	}, nil)

	cfg, _, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.Clippy.Version)
	assert.Equal(t, 2*time.Minute, cfg.Clippy.Timeout)
	assert.Equal(t, matrix.ClippyDefaults.Commandline, cfg.Clippy.Commandline)
	assert.Equal(t, []string{"stable"}, cfg.Versions)
}

func TestResolveFullDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
cache = "none"
dist = "bionic"
versions = ["stable", "beta", "nightly"]
test_commandline = "cargo test"
scheduled_test_branches = ["main", "release"]
test_schedule = "0 3 * * *"

[bench]
run = true
run_cron = true

[rustfmt]
run = false

[additional_matrix_entries.miri]
run = true
version = "nightly"
commandline = "cargo miri test"
allow_failure = true
`)

	cfg, _, err := (&Resolver{Manifest: new(MockQuerier), WorkDir: dir}).Resolve("")
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Cache)
	assert.Equal(t, "linux", cfg.OS)
	assert.Equal(t, "bionic", cfg.Dist)
	assert.Equal(t, []string{"stable", "beta", "nightly"}, cfg.Versions)
	assert.Equal(t, "cargo test", cfg.TestCommandline)
	assert.Equal(t, []string{"main", "release"}, cfg.ScheduledTestBranches)
	assert.Equal(t, "0 3 * * *", cfg.TestSchedule)
	assert.True(t, cfg.Bench.Run)
	assert.True(t, cfg.Bench.RunCron)
	assert.Equal(t, "nightly", cfg.Bench.Version)
	assert.False(t, cfg.Rustfmt.Run)
	assert.Equal(t, matrix.RustfmtDefaults.Commandline, cfg.Rustfmt.Commandline)
	assert.True(t, cfg.AnyActiveAllowedToFail())
	assert.Equal(t, matrix.Entry{
		Run:          true,
		Version:      "nightly",
		Commandline:  "cargo miri test",
		AllowFailure: true,
	}, cfg.AdditionalMatrixEntries["miri"])
}

var malformedDocuments = []struct {
	name    string
	content string
}{
	{"malformed toml", "os = \n"},
	{"wrong scalar type", "os = 5\n"},
	{"wrong entry type", "clippy = \"yes\"\n"},
	{"wrong list element", "versions = [1, 2]\n"},
	{"negative timeout", "[bench]\ntimeout = -1\n"},
	{"unknown timeout field", "[bench]\ntimeout = {minutes = 1}\n"},
	{"bad duration string", "[bench]\ntimeout = \"soon\"\n"},
}

func TestLoadFileParseErrors(t *testing.T) {
	for _, tt := range malformedDocuments {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Equal(t, errors.ErrConfigParse, errors.GetErrorCode(err))
			assert.Equal(t, errors.CategoryParse, errors.GetCategory(err))
			assert.Equal(t, path, errors.GetErrorDetails(err)["source"])
		})
	}
}

func TestResolveSkipsUnusableFiles(t *testing.T) {
	for _, tt := range malformedDocuments {
		t.Run(tt.name+" falls through to .template-ci.toml", func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, FileName), tt.content)
			writeFile(t, filepath.Join(dir, DotFileName), `os = "dotfile"`)
			querier := new(MockQuerier)

			cfg, root, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
			require.NoError(t, err)
			assert.Equal(t, "dotfile", cfg.OS)
			assert.Equal(t, dir, root)
			querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
		})
	}

	t.Run("only file is malformed falls through to the manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "os = \n")
		querier := new(MockQuerier)
		querier.On("Query", dir, "").Return(&manifest.Package{
			Dir:          dir,
			ManifestPath: filepath.Join(dir, "Cargo.toml"),
		}, nil)

		cfg, root, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, dir, root)
		querier.AssertExpectations(t)
	})

	t.Run("both files malformed surface the manifest error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "os = \n")
		writeFile(t, filepath.Join(dir, DotFileName), "versions = [1]\n")
		querier := new(MockQuerier)
		querier.On("Query", dir, "").Return(nil, errors.New(errors.ErrManifestNotFound, "no Cargo.toml"))

		_, _, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfigNotFound, errors.GetErrorCode(err))
	})

	t.Run("malformed metadata is still an error", func(t *testing.T) {
		dir := t.TempDir()
		querier := new(MockQuerier)
		querier.On("Query", dir, "").Return(&manifest.Package{
			Dir:          dir,
			ManifestPath: filepath.Join(dir, "Cargo.toml"),
			Metadata: map[string]interface{}{
				"template_ci": map[string]interface{}{"os": int64(5)},
			},
		}, nil)

		_, _, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfigParse, errors.GetErrorCode(err))
		assert.Equal(t, filepath.Join(dir, "Cargo.toml"), errors.GetErrorDetails(err)["source"])
	})
}

func TestResolveMetadataNotATable(t *testing.T) {
	dir := t.TempDir()
	querier := new(MockQuerier)
	querier.On("Query", dir, "").Return(&manifest.Package{
		Dir:          dir,
		ManifestPath: filepath.Join(dir, "Cargo.toml"),
		Metadata:     map[string]interface{}{"template_ci": "travis please"},
	}, nil)

	_, _, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestResolveManifestErrors(t *testing.T) {
	t.Run("no manifest anywhere", func(t *testing.T) {
		dir := t.TempDir()
		querier := new(MockQuerier)
		querier.On("Query", dir, "").Return(nil, errors.New(errors.ErrManifestNotFound, "no Cargo.toml"))

		_, _, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfigNotFound, errors.GetErrorCode(err))
		assert.Equal(t, errors.CategoryInputAbsent, errors.GetCategory(err))
		assert.ErrorIs(t, err, errors.New(errors.ErrManifestNotFound, ""))
	})

	t.Run("broken manifest", func(t *testing.T) {
		dir := t.TempDir()
		querier := new(MockQuerier)
		querier.On("Query", dir, "").Return(nil, errors.New(errors.ErrManifestParse, "bad toml"))

		_, _, err := (&Resolver{Manifest: querier, WorkDir: dir}).Resolve("")
		require.Error(t, err)
		assert.Equal(t, errors.ErrManifestParse, errors.GetErrorCode(err))
	})
}

func TestResolveExplicitPath(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), `os = "explicit"`)

		cfg, root, err := (&Resolver{Manifest: new(MockQuerier), WorkDir: t.TempDir()}).Resolve(dir)
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.OS)
		assert.Equal(t, dir, root)
	})

	t.Run("configuration file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ci", "custom.toml")
		writeFile(t, path, `os = "custom"`)
		writeFile(t, filepath.Join(dir, FileName), `os = "ignored"`)

		cfg, root, err := (&Resolver{Manifest: new(MockQuerier), WorkDir: dir}).Resolve("ci/custom.toml")
		require.NoError(t, err)
		assert.Equal(t, "custom", cfg.OS)
		assert.Equal(t, filepath.Join(dir, "ci"), root)
	})

	t.Run("cargo manifest", func(t *testing.T) {
		dir := t.TempDir()
		manifestPath := filepath.Join(dir, "Cargo.toml")
		writeFile(t, manifestPath, "[package]\nname = \"x\"\n")
		querier := new(MockQuerier)
		querier.On("Query", dir, manifestPath).Return(&manifest.Package{
			Dir:          dir,
			ManifestPath: manifestPath,
		}, nil)

		cfg, root, err := (&Resolver{Manifest: querier, WorkDir: t.TempDir()}).Resolve(manifestPath)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, dir, root)
		querier.AssertExpectations(t)
	})

	t.Run("missing path", func(t *testing.T) {
		dir := t.TempDir()

		_, _, err := (&Resolver{Manifest: new(MockQuerier), WorkDir: dir}).Resolve("nope.toml")
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigNotFound))
	})
}

func TestResolveEnvironmentOverrides(t *testing.T) {
	t.Setenv("TEMPLATE_CI_OS", "osx")
	t.Setenv("TEMPLATE_CI_VERSIONS", "stable,beta")
	t.Setenv("TEMPLATE_CI_SCHEDULED_TEST_BRANCHES", "main")
	t.Setenv("TEMPLATE_CI_BENCH", "ignored")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
os = "linux"
dist = "bionic"
`)

	cfg, _, err := (&Resolver{Manifest: new(MockQuerier), WorkDir: dir}).Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "osx", cfg.OS)
	assert.Equal(t, "bionic", cfg.Dist)
	assert.Equal(t, []string{"stable", "beta"}, cfg.Versions)
	assert.Equal(t, []string{"main"}, cfg.ScheduledTestBranches)
	assert.Equal(t, matrix.BenchDefaults.Entry(), cfg.Bench)
}
