package cli

import (
	"fmt"

	"github.com/arthur-debert/template-ci/pkg/ci/circleci"
	"github.com/arthur-debert/template-ci/pkg/ci/travis"
	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/generate"
	"github.com/arthur-debert/template-ci/pkg/logging"
	"github.com/arthur-debert/template-ci/pkg/manifest"
	"github.com/arthur-debert/template-ci/pkg/ui"
	"github.com/spf13/cobra"
)

// Values accepted by --metadata-source.
const (
	MetadataSourceAuto  = "auto"
	MetadataSourceCargo = "cargo"
	MetadataSourceFile  = "file"
)

// sourceFlags are shared by every template-ci subcommand.
type sourceFlags struct {
	manifestPath   string
	metadataSource string
}

func (f *sourceFlags) querier() (manifest.Querier, error) {
	switch f.metadataSource {
	case MetadataSourceAuto, "":
		return manifest.Auto(), nil
	case MetadataSourceCargo:
		return manifest.NewCargoQuerier(), nil
	case MetadataSourceFile:
		return &manifest.FileQuerier{}, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, MsgErrMetadataSource, f.metadataSource).
		WithDetail("metadata_source", f.metadataSource)
}

func newTemplateCICmd() *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "template-ci",
		Short: MsgTemplateCIShort,
		Long:  MsgTemplateCILong,
		Args:  cobra.NoArgs,
		RunE:  runGenerate(flags, generate.DefaultBackend),
	}

	cmd.PersistentFlags().StringVar(&flags.manifestPath, "manifest", "", MsgFlagManifest)
	cmd.PersistentFlags().StringVar(&flags.metadataSource, "metadata-source", MetadataSourceAuto, MsgFlagMetadataSource)
	_ = cmd.PersistentFlags().SetAnnotation("manifest", cobra.BashCompFilenameExt, []string{"toml"})

	cmd.AddCommand(&cobra.Command{
		Use:   travis.Name,
		Short: MsgTravisShort,
		Args:  cobra.NoArgs,
		RunE:  runGenerate(flags, travis.Name),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   circleci.Name,
		Short: MsgCircleCIShort,
		Long:  MsgCircleCILong,
		Args:  cobra.NoArgs,
		RunE:  runGenerate(flags, circleci.Name),
	})
	cmd.AddCommand(newShowCmd(flags))

	return cmd
}

func runGenerate(flags *sourceFlags, backend string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cli.generate")

		querier, err := flags.querier()
		if err != nil {
			return err
		}

		logger.Debug().
			Str("backend", backend).
			Str("manifest", flags.manifestPath).
			Str("metadata_source", flags.metadataSource).
			Msg("Running generator")

		result, err := generate.Run(generate.Options{
			Backend:  backend,
			Path:     flags.manifestPath,
			Manifest: querier,
		})
		if err != nil {
			return err
		}

		success := ui.GetStyle("Success")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(),
			success.Render(fmt.Sprintf(MsgWroteFormat, result.Backend, result.Path)))
		return nil
	}
}
