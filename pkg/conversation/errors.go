package conversation

import "errors"

var (
	// ErrEmptyQuery is returned by Submit for a blank or whitespace-only query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNothingToRegenerate is returned by Regenerate before any user turn exists.
	ErrNothingToRegenerate = errors.New("nothing to regenerate")
)

// CompletionError reports a failed call to the completion provider.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return "completion failed: " + e.Err.Error()
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// IsCompletionFailure reports whether err is or wraps a *CompletionError.
func IsCompletionFailure(err error) bool {
	var ce *CompletionError
	return errors.As(err, &ce)
}
