// Package errors provides structured error handling for HyperSeek.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Index and storage errors
//   - 3XX: Network and upstream-service errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates index and persistence errors.
	CategoryStorage Category = "STORAGE"
	// CategoryNetwork indicates network and upstream-service errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Index and storage errors (200-299)
	ErrCodeNotFound     = "ERR_201_NOT_FOUND"
	ErrCodeConflict     = "ERR_202_CONFLICT"
	ErrCodeCorruptIndex = "ERR_203_CORRUPT_INDEX"
	ErrCodeStoreFailed  = "ERR_204_STORE_FAILED"

	// Network and upstream errors (300-399)
	ErrCodeAdapterFetch         = "ERR_301_ADAPTER_FETCH"
	ErrCodeEmbeddingUnavailable = "ERR_302_EMBEDDING_UNAVAILABLE"
	ErrCodeLLMUnavailable       = "ERR_303_LLM_UNAVAILABLE"
	ErrCodeNetworkTimeout       = "ERR_304_NETWORK_TIMEOUT"

	// Validation errors (400-499)
	ErrCodeInvalidConfig = "ERR_401_INVALID_CRAWL_CONFIG"
	ErrCodeInvalidQuery  = "ERR_402_INVALID_QUERY"
	ErrCodeInvalidInput  = "ERR_403_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeIndexFailed  = "ERR_502_INDEX_FAILED"
	ErrCodeSearchFailed = "ERR_503_SEARCH_FAILED"
	ErrCodeJobCancelled = "ERR_504_JOB_CANCELLED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "301" in "ERR_301_ADAPTER_FETCH".
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex:
		return SeverityFatal
	case ErrCodeEmbeddingUnavailable, ErrCodeLLMUnavailable:
		// Search and RAG degrade instead of failing on these.
		return SeverityWarning
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeAdapterFetch, ErrCodeNetworkTimeout:
		return true
	default:
		return false
	}
}
