package history

import "github.com/ysouyno/isbld/internal/foundation/errors"

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.HistoryError("could not open run history database").Build()

	// ErrInitializeSchemaFailed indicates the schema could not be created.
	ErrInitializeSchemaFailed = errors.HistoryError("failed to initialize run history schema").Build()

	// ErrSaveFailed indicates a run could not be recorded.
	ErrSaveFailed = errors.HistoryError("failed to record run").Build()

	// ErrQueryFailed indicates reading runs failed.
	ErrQueryFailed = errors.HistoryError("failed to query run history").Build()
)

func wrap(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, errors.CategoryHistory, sentinel.Message()).Warning().Build()
}
