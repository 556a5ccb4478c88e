package errors

import "net/http"

// HTTPStatus maps an internal error code to an HTTP status for the REST API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed,
		ErrCodeInvalidStatusTransition,
		ErrCodeDeviceCheckIncomplete,
		ErrCodeApprovalOutOfOrder,
		ErrCodeTemplateValidationFailed:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeResourceNotFound, ErrCodeTemplateNotFound, ErrCodeIndexNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateApplication:
		return http.StatusConflict
	case ErrCodeNoSlotAvailable:
		return http.StatusUnprocessableEntity
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeQueryTimeout, ErrCodeSearchTimeout, ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
