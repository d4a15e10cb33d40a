package errors

import (
	"errors"
	"fmt"
)

// SeekError is the structured error type for HyperSeek.
// It provides context for error handling, logging, and API presentation.
type SeekError struct {
	// Code is the unique error code (e.g., "ERR_202_CONFLICT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *SeekError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SeekError) Unwrap() error {
	return e.Cause
}

// Is matches SeekErrors by code, enabling errors.Is on sentinel instances.
func (e *SeekError) Is(target error) bool {
	if t, ok := target.(*SeekError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SeekError) WithDetail(key, value string) *SeekError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new SeekError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *SeekError {
	return &SeekError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SeekError from an existing error.
// The error's message becomes the SeekError message.
func Wrap(code string, err error) *SeekError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates an unknown-document or unknown-job error.
func NotFound(kind, id string) *SeekError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s %q not found", kind, id), nil)
}

// Conflict creates a duplicate-insert error.
func Conflict(kind, id string) *SeekError {
	return New(ErrCodeConflict, fmt.Sprintf("%s %q already exists", kind, id), nil)
}

// AdapterFetch creates a crawl source request failure. Retryable.
func AdapterFetch(message string, cause error) *SeekError {
	return New(ErrCodeAdapterFetch, message, cause)
}

// EmbeddingUnavailable signals the embedding service is down; search
// degrades to BM25-only.
func EmbeddingUnavailable(cause error) *SeekError {
	return New(ErrCodeEmbeddingUnavailable, "embedding service unavailable", cause)
}

// LLMUnavailable signals the LLM service is down; RAG returns the
// non-generated fallback answer.
func LLMUnavailable(cause error) *SeekError {
	return New(ErrCodeLLMUnavailable, "llm service unavailable", cause)
}

// InvalidConfig creates a malformed-crawl-config error, rejected at
// submission before a job is created.
func InvalidConfig(message string) *SeekError {
	return New(ErrCodeInvalidConfig, message, nil)
}

// JobCancelled marks a crawl job terminated by caller cancellation.
func JobCancelled(cause error) *SeekError {
	return New(ErrCodeJobCancelled, "crawl job cancelled", cause)
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return GetCode(err) == ErrCodeNotFound
}

// IsConflict reports whether err carries the conflict code.
func IsConflict(err error) bool {
	return GetCode(err) == ErrCodeConflict
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var se *SeekError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCode extracts the error code from a SeekError anywhere in the chain.
// Returns empty string if the chain holds no SeekError.
func GetCode(err error) string {
	var se *SeekError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SeekError in the chain.
func GetCategory(err error) Category {
	var se *SeekError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}
