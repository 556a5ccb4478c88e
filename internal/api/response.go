package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/scheduler"
	"hiresphere-backend/internal/store"
)

// JSON writes a JSON response body with the given status
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error *commonerr.StandardError `json:"error"`
}

// Error maps an error to its HTTP status and writes the standard error body
func Error(w http.ResponseWriter, err error) {
	stdErr := normalize(err)
	JSON(w, commonerr.HTTPStatus(stdErr.Code), errorBody{Error: stdErr})
}

// normalize converts store sentinels and plain errors into StandardError
func normalize(err error) *commonerr.StandardError {
	var stdErr *commonerr.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return commonerr.NewResourceNotFoundError("resource", err.Error())
	case errors.Is(err, store.ErrConflict):
		return commonerr.NewErrorWithCode(commonerr.ErrCodeDuplicateApplication, err.Error())
	case errors.Is(err, store.ErrInvalidTransition):
		return commonerr.NewErrorWithCode(commonerr.ErrCodeInvalidStatusTransition, err.Error())
	case errors.Is(err, store.ErrApprovalOutOfOrder):
		return commonerr.NewApprovalOutOfOrderError(err.Error())
	case errors.Is(err, scheduler.ErrNoSlot):
		return commonerr.NewNoSlotAvailableError(err.Error())
	default:
		return commonerr.NewQueryExecutionFailedError("request", err)
	}
}

// decodeJSON reads a request body into v, rejecting malformed payloads
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return commonerr.NewValidationError("invalid request body", err.Error())
	}
	return nil
}

func validationError(format string, args ...interface{}) error {
	return commonerr.NewValidationError(fmt.Sprintf(format, args...), "")
}
