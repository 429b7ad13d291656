// Package matrix models the optional CI jobs ("matrix entries") that sit next
// to the regular test runs: benchmarks, clippy, rustfmt and any number of
// user-named custom jobs.
//
// Every entry is built by merging a role-specific set of compiled-in defaults
// with a partial record read from configuration. The merge is field by field:
// a source that only sets the toolchain version keeps the default command.
package matrix
