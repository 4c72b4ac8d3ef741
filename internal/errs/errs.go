// Package errs defines the typed error taxonomy used across semindex and
// the exponential-backoff retry helper for transient failures.
package errs

import "fmt"

// Kind tags an error with the category spec.md §7 defines. Kinds drive
// both the retry policy and the user-visible formatting.
type Kind string

const (
	Configuration Kind = "CONFIGURATION"
	Parsing       Kind = "PARSING"
	Embedding     Kind = "EMBEDDING"
	Storage       Kind = "STORAGE"
	Indexing      Kind = "INDEXING"
	Search        Kind = "SEARCH"
	Validation    Kind = "VALIDATION"
	Network       Kind = "NETWORK"
	FileSystem    Kind = "FILESYSTEM"
	Retryable     Kind = "RETRYABLE"
)

// Context carries optional diagnostic fields attached to an Error.
type Context struct {
	File         string
	Field        string
	Provider     string
	URL          string
	RetryAfterMs int
}

// Error is the typed error value propagated through the pipeline.
type Error struct {
	Kind    Kind
	Message string
	Ctx     Context
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithContext attaches diagnostic context and returns the same *Error for
// chaining at the call site.
func (e *Error) WithContext(ctx Context) *Error {
	e.Ctx = ctx
	return e
}

// IsRetryable reports whether an error's kind is eligible for automatic
// retry: Retryable and Network kinds, per spec.md §7.
func IsRetryable(err error) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Kind == Retryable || e.Kind == Network
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
