package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
)

// Sentinel pseudo-codes used by GetCode.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Case module error codes
const (
	ErrCodeCaseNotFound       ErrorCode = "CASE_001"
	ErrCodeCaseStatusInvalid  ErrorCode = "CASE_002"
	ErrCodeMatterTypeInvalid  ErrorCode = "CASE_003"
	ErrCodeContactRoleInvalid ErrorCode = "CASE_004"
)

// Deadline module error codes
const (
	ErrCodeDeadlineAnalysisFailed ErrorCode = "DLN_001"
	ErrCodeEventTypeUnsupported   ErrorCode = "DLN_002"
)

// Document intelligence error codes
const (
	ErrCodeDocumentNotFound       ErrorCode = "DOC_001"
	ErrCodeDocumentFetchFailed    ErrorCode = "DOC_002"
	ErrCodeDocumentAnalysisFailed ErrorCode = "DOC_003"
)

// Billing module error codes
const (
	ErrCodeBillingAnalysisFailed ErrorCode = "BIL_001"
)

// Communication module error codes
const (
	ErrCodeCommsAnalysisFailed ErrorCode = "COM_001"
)

// Brain / orchestration error codes
const (
	ErrCodeInsightNotFound          ErrorCode = "BRAIN_001"
	ErrCodeActionNotFound           ErrorCode = "BRAIN_002"
	ErrCodeInsightTransitionInvalid ErrorCode = "BRAIN_003"
	ErrCodeActionTransitionInvalid  ErrorCode = "BRAIN_004"
	ErrCodeAnalysisFailed           ErrorCode = "BRAIN_005"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,

	ErrCodeCaseNotFound:       http.StatusNotFound,
	ErrCodeCaseStatusInvalid:  http.StatusBadRequest,
	ErrCodeMatterTypeInvalid:  http.StatusBadRequest,
	ErrCodeContactRoleInvalid: http.StatusBadRequest,

	ErrCodeDeadlineAnalysisFailed: http.StatusInternalServerError,
	ErrCodeEventTypeUnsupported:   http.StatusBadRequest,

	ErrCodeDocumentNotFound:       http.StatusNotFound,
	ErrCodeDocumentFetchFailed:    http.StatusInternalServerError,
	ErrCodeDocumentAnalysisFailed: http.StatusInternalServerError,

	ErrCodeBillingAnalysisFailed: http.StatusInternalServerError,
	ErrCodeCommsAnalysisFailed:   http.StatusInternalServerError,

	ErrCodeInsightNotFound:          http.StatusNotFound,
	ErrCodeActionNotFound:           http.StatusNotFound,
	ErrCodeInsightTransitionInvalid: http.StatusConflict,
	ErrCodeActionTransitionInvalid:  http.StatusConflict,
	ErrCodeAnalysisFailed:           http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code associated with the error code,
// defaulting to 500 for unmapped codes.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
