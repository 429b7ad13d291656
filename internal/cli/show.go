package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/template-ci/pkg/config"
	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/ui"
	"github.com/spf13/cobra"
)

// entryView is the printable form of a matrix entry.
type entryView struct {
	Name               string `json:"name"`
	Run                bool   `json:"run"`
	RunCron            bool   `json:"run_cron"`
	Version            string `json:"version"`
	InstallCommandline string `json:"install_commandline,omitempty"`
	Commandline        string `json:"commandline"`
	Timeout            string `json:"timeout,omitempty"`
	AllowFailure       bool   `json:"allow_failure"`
}

// configView is the printable form of a resolved configuration.
type configView struct {
	Root                  string      `json:"root"`
	Cache                 string      `json:"cache"`
	OS                    string      `json:"os"`
	Dist                  string      `json:"dist"`
	Versions              []string    `json:"versions"`
	TestCommandline       string      `json:"test_commandline"`
	ScheduledTestBranches []string    `json:"scheduled_test_branches"`
	TestSchedule          string      `json:"test_schedule"`
	Entries               []entryView `json:"entries"`
}

func newConfigView(conf *config.Config, root string) configView {
	view := configView{
		Root:                  root,
		Cache:                 conf.Cache,
		OS:                    conf.OS,
		Dist:                  conf.Dist,
		Versions:              conf.Versions,
		TestCommandline:       conf.TestCommandline,
		ScheduledTestBranches: conf.ScheduledTestBranches,
		TestSchedule:          conf.TestSchedule,
	}
	for _, e := range conf.Entries() {
		view.Entries = append(view.Entries, entryView{
			Name:               e.Name,
			Run:                e.Run,
			RunCron:            e.RunCron,
			Version:            e.Version,
			InstallCommandline: e.InstallCommandline,
			Commandline:        e.Commandline,
			Timeout:            e.TimeoutString(),
			AllowFailure:       e.AllowFailure,
		})
	}
	return view
}

func newShowCmd(flags *sourceFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: MsgShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := ui.ParseFormat(format)
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, "invalid --format").
					WithDetail("format", format)
			}

			querier, err := flags.querier()
			if err != nil {
				return err
			}

			resolver := &config.Resolver{Manifest: querier}
			conf, root, err := resolver.Resolve(flags.manifestPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f, ok := out.(*os.File); ok {
				outputFormat = outputFormat.Resolve(f)
			} else if outputFormat == ui.FormatAuto {
				outputFormat = ui.FormatText
			}

			return writeConfig(out, newConfigView(conf, root), outputFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", ui.FormatAuto.String(), MsgFlagFormat)

	return cmd
}

func writeConfig(w io.Writer, view configView, format ui.Format) error {
	if format == ui.FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}
	_, err := fmt.Fprint(w, ui.RenderMarkdown(configMarkdown(view), format, 0))
	return err
}

func configMarkdown(view configView) string {
	var b strings.Builder

	b.WriteString("# template-ci configuration\n\n")
	fmt.Fprintf(&b, "Project root: `%s`\n\n", view.Root)

	b.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| cache | %s |\n", cell(view.Cache))
	fmt.Fprintf(&b, "| os | %s |\n", cell(view.OS))
	fmt.Fprintf(&b, "| dist | %s |\n", cell(view.Dist))
	fmt.Fprintf(&b, "| versions | %s |\n", cell(strings.Join(view.Versions, ", ")))
	fmt.Fprintf(&b, "| test_commandline | %s |\n", cell(view.TestCommandline))
	fmt.Fprintf(&b, "| scheduled_test_branches | %s |\n", cell(strings.Join(view.ScheduledTestBranches, ", ")))
	fmt.Fprintf(&b, "| test_schedule | %s |\n", cell(view.TestSchedule))

	b.WriteString("\n## Matrix entries\n\n")
	b.WriteString("| Entry | Run | Scheduled | Version | Install | Command | Timeout | Allow failure |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, e := range view.Entries {
		fmt.Fprintf(&b, "| %s | %t | %t | %s | %s | %s | %s | %t |\n",
			cell(e.Name), e.Run, e.RunCron, cell(e.Version),
			cell(e.InstallCommandline), cell(e.Commandline), cell(e.Timeout), e.AllowFailure)
	}

	return b.String()
}

// cell makes s safe inside a markdown table cell as a code span. The fence
// is one backtick longer than any backtick run in s.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")

	fence := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func longestRun(s string, c rune) int {
	longest, current := 0, 0
	for _, r := range s {
		if r != c {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}
