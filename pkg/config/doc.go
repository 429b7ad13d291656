// Package config resolves the template-ci configuration of a Rust project.
//
// Three sources are tried in order and the first one found wins:
//
//  1. template-ci.toml in the target directory
//  2. .template-ci.toml in the same directory
//  3. the template_ci key of [package.metadata] in Cargo.toml
//
// Whatever a source leaves out is filled in from compiled-in defaults, field
// by field, so a project can change the clippy toolchain without restating
// the clippy command. TEMPLATE_CI_* environment variables override the
// scalar settings of whichever source was used.
package config
