package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// CodeOK and CodeUnknown bracket the code space: CodeOK is returned by
// GetCode(nil), CodeUnknown by GetCode for non-AppError chains.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeStorageError       ErrorCode = "COMMON_011"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_013"
	ErrCodeNotImplemented     ErrorCode = "COMMON_014"
)

// Pipeline Error Codes
const (
	// ErrCodeDataFormat marks a malformed persisted artifact (not an array,
	// unparseable JSON, wrong schema). Fatal for the stage that loads it.
	ErrCodeDataFormat ErrorCode = "PIPE_001"
	// ErrCodeItemProcessing marks a failure confined to one document or query;
	// the surrounding batch continues.
	ErrCodeItemProcessing ErrorCode = "PIPE_002"
	ErrCodeStageFailed    ErrorCode = "PIPE_003"
)

// Retrieval Error Codes
const (
	ErrCodeIndexBuildFailed   ErrorCode = "RET_001"
	ErrCodeMethodUnsupported  ErrorCode = "RET_002"
	ErrCodeVectorSearchFailed ErrorCode = "RET_003"
)

// Embedding Error Codes
const (
	ErrCodeEmbeddingUnavailable ErrorCode = "EMB_001"
	ErrCodeEmbeddingDimension   ErrorCode = "EMB_002"
	ErrCodeEmbeddingBadResponse ErrorCode = "EMB_003"
)

// Archive Error Codes
const (
	ErrCodeCaseNotFound     ErrorCode = "ARC_001"
	ErrCodeSearchFailed     ErrorCode = "ARC_002"
	ErrCodeGraphQueryFailed ErrorCode = "ARC_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDataFormat:     http.StatusUnprocessableEntity,
	ErrCodeItemProcessing: http.StatusInternalServerError,
	ErrCodeStageFailed:    http.StatusInternalServerError,

	ErrCodeIndexBuildFailed:   http.StatusInternalServerError,
	ErrCodeMethodUnsupported:  http.StatusBadRequest,
	ErrCodeVectorSearchFailed: http.StatusInternalServerError,

	ErrCodeEmbeddingUnavailable: http.StatusServiceUnavailable,
	ErrCodeEmbeddingDimension:   http.StatusInternalServerError,
	ErrCodeEmbeddingBadResponse: http.StatusBadGateway,

	ErrCodeCaseNotFound:     http.StatusNotFound,
	ErrCodeSearchFailed:     http.StatusInternalServerError,
	ErrCodeGraphQueryFailed: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDataFormat:     "persisted artifact is malformed",
	ErrCodeItemProcessing: "item processing failed",
	ErrCodeStageFailed:    "pipeline stage failed",

	ErrCodeIndexBuildFailed:   "similarity index build failed",
	ErrCodeMethodUnsupported:  "unsupported retrieval method",
	ErrCodeVectorSearchFailed: "vector search failed",

	ErrCodeEmbeddingUnavailable: "embedding service unavailable",
	ErrCodeEmbeddingDimension:   "embedding dimension mismatch",
	ErrCodeEmbeddingBadResponse: "embedding service returned malformed response",

	ErrCodeCaseNotFound:     "case not found",
	ErrCodeSearchFailed:     "case search failed",
	ErrCodeGraphQueryFailed: "citation graph query failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
