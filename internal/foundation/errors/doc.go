// Package errors provides the classified error primitives used across isbld.
//
// Every failure that can end a run is a ClassifiedError carrying a category
// (drives the process exit code), a severity, an optional kind (the named
// condition callers match with errors.Is) and structured context such as the
// offending path or the configuration file the operator has to edit.
//
// Example usage:
//
//	err := errors.ConfigError("toolchain home does not exist").
//		WithKind(errors.KindMissingToolchainPath).
//		WithContext("path", cfg.ToolchainHome).
//		WithHint("edit " + cfgPath + " and rerun").
//		Build()
//
// A single CLIErrorAdapter at the top of the program prints the error and
// exits with the code mapped from its category.
package errors
