package errors

import "net/http"

// ErrorCode identifies a failure category. The string value is the code
// surfaced verbatim in API error responses.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "INTERNAL"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeValidation         ErrorCode = "VALIDATION"
	ErrCodeSerialization      ErrorCode = "SERIALIZATION"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError         ErrorCode = "CACHE_ERROR"
	ErrCodeMessagingError     ErrorCode = "MESSAGING_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeUnknown            ErrorCode = "UNKNOWN"
	CodeOK                    ErrorCode = "OK"
)

// Batch engine error codes.
//
// Validation-class codes reject a request before any operation executes.
// MISSING_* and UNSUPPORTED_OPERATION also occur per operation inside a
// running batch, where they fail the single operation only.
const (
	ErrCodeEmptyBatch           ErrorCode = "EMPTY_BATCH"
	ErrCodeBatchTooLarge        ErrorCode = "BATCH_TOO_LARGE"
	ErrCodeDuplicateOperationID ErrorCode = "DUPLICATE_OPERATION_ID"
	ErrCodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
	ErrCodeBatchNotFound        ErrorCode = "BATCH_NOT_FOUND"
	ErrCodeMissingID            ErrorCode = "MISSING_ID"
	ErrCodeMissingLocationID    ErrorCode = "MISSING_LOCATION_ID"
	ErrCodeMissingQuantity      ErrorCode = "MISSING_QUANTITY"
	ErrCodeTimeout              ErrorCode = "TIMEOUT"
	ErrCodeProcessingFailed     ErrorCode = "PROCESSING_FAILED"
	ErrCodeBatchAborted         ErrorCode = "BATCH_ABORTED"
)

// Product domain error codes.
const (
	ErrCodeProductNotFound      ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeProductAlreadyExists ErrorCode = "PRODUCT_ALREADY_EXISTS"
	ErrCodeMissingTenantID      ErrorCode = "MISSING_TENANT_ID"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,

	ErrCodeEmptyBatch:           http.StatusBadRequest,
	ErrCodeBatchTooLarge:        http.StatusBadRequest,
	ErrCodeDuplicateOperationID: http.StatusBadRequest,
	ErrCodeUnsupportedOperation: http.StatusBadRequest,
	ErrCodeBatchNotFound:        http.StatusNotFound,
	ErrCodeMissingID:            http.StatusBadRequest,
	ErrCodeMissingLocationID:    http.StatusBadRequest,
	ErrCodeMissingQuantity:      http.StatusBadRequest,
	ErrCodeTimeout:              http.StatusRequestTimeout,
	ErrCodeProcessingFailed:     http.StatusInternalServerError,
	ErrCodeBatchAborted:         http.StatusConflict,

	ErrCodeProductNotFound:      http.StatusNotFound,
	ErrCodeProductAlreadyExists: http.StatusConflict,
	ErrCodeMissingTenantID:      http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "message publish failed",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTooManyRequests:    "too many requests",

	ErrCodeEmptyBatch:           "empty batch request",
	ErrCodeBatchTooLarge:        "batch exceeds maximum size",
	ErrCodeDuplicateOperationID: "duplicate operation id",
	ErrCodeUnsupportedOperation: "unsupported operation",
	ErrCodeBatchNotFound:        "batch not found",
	ErrCodeMissingID:            "missing required field: id",
	ErrCodeMissingLocationID:    "missing required field: location_id",
	ErrCodeMissingQuantity:      "missing required field: quantity",
	ErrCodeTimeout:              "operation timeout",
	ErrCodeProcessingFailed:     "batch processing failed",
	ErrCodeBatchAborted:         "batch aborted",

	ErrCodeProductNotFound:      "product not found",
	ErrCodeProductAlreadyExists: "product already exists",
	ErrCodeMissingTenantID:      "missing required field: tenant_id",
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

// IsClientError reports whether code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
