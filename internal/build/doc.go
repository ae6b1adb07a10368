// Package build sequences the toolchain steps of an installer build.
//
// Pipeline runs the rendered compile, build and (optionally) archive command
// lines one after another through an Executor and stops at the first failure.
// BuildService wraps a Pipeline with everything a complete run needs:
// loading and validating the configuration, resolving the toolchain
// parameters, and recording the outcome into the run history.
//
// All execution paths (build, watch) route through BuildService.
package build
