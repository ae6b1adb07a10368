package config

import "github.com/ysouyno/isbld/internal/foundation/errors"

// Sentinels for errors.Is; the errors actually returned carry the path and hint.
var (
	// ErrConfigCreated signals that a default document was just written.
	ErrConfigCreated = errors.ConfigError("configuration file created").WithKind(errors.KindConfigCreated).Build()

	// ErrConfigMalformed indicates the document could not be parsed.
	ErrConfigMalformed = errors.ConfigError("configuration file is malformed").WithKind(errors.KindConfigMalformed).Build()

	// ErrMissingToolchainPath indicates toolchain_home does not exist.
	ErrMissingToolchainPath = errors.ConfigError("toolchain home does not exist").WithKind(errors.KindMissingToolchainPath).Build()

	// ErrMissingArchiverPath indicates archiver_path does not exist.
	ErrMissingArchiverPath = errors.ConfigError("archiver does not exist").WithKind(errors.KindMissingArchiverPath).Build()
)
