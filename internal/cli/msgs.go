package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Generate a reasonable CI config file from Cargo.toml"
	MsgTemplateCIShort = "Generate CI configuration (travis by default)"
	MsgTemplateCILong  = `Generate CI configuration for a Rust project.

The configuration is read from template-ci.toml, then .template-ci.toml, then
the [package.metadata.template_ci] table of Cargo.toml. The first source found
is used; anything it leaves out keeps its default.

Without a subcommand a .travis.yml is generated.`
	MsgTravisShort   = "Generate travis-ci configuration"
	MsgCircleCIShort = "Generate circleci configuration"
	MsgCircleCILong  = `Generate .circleci/config.yml.

bors.toml must exist next to it and list the "continuous_integration" status,
which the generated workflow reports once every job has passed.`
	MsgShowShort    = "Show the resolved configuration"
	MsgVersionShort = "Print version information"
	MsgVersionLong  = "Print detailed version information including commit hash and build date"

	// Status messages
	MsgWroteFormat   = "Wrote %s config to %s"
	MsgVersionFormat = "cargo-template-ci version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Error messages
	MsgErrMetadataSource = "unknown metadata source %q (expected auto, cargo or file)"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagManifest       = "Path to Cargo.toml, a config file, or the project directory"
	MsgFlagMetadataSource = "How to read Cargo.toml metadata: auto, cargo or file"
	MsgFlagFormat         = "Output format: auto, term, text or json"
)
