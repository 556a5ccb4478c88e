package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, msg)
	l.fields = append(l.fields, fields)
}

func TestErrorHandler_NormalizeError(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	stdErr := &StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "model unavailable",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
	assert.Same(t, stdErr, h.normalizeError(stdErr))

	wrapped := h.normalizeError(errors.New("connection refused"))
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), wrapped.Code)
	assert.Equal(t, "connection refused", wrapped.Details)
	assert.False(t, wrapped.Retryable)
}

func TestRemainingRetries(t *testing.T) {
	// The handed-back count must always be below job.Retries
	assert.Equal(t, 2, remainingRetries(3, 3))
	assert.Equal(t, 0, remainingRetries(1, 3))
	assert.Equal(t, 0, remainingRetries(0, 3))
	assert.Equal(t, 1, remainingRetries(5, 1))
	assert.Equal(t, 0, remainingRetries(5, 0))
}

func TestGetRetryCount_WorkerCodes(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeScoringFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeNotificationSendFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeReportExportFailed))
	assert.Equal(t, 1, GetRetryCount(ErrCodeLLMTimeout))

	// Business failures never retry
	assert.Equal(t, 0, GetRetryCount(ErrCodeValidationFailed))
	assert.Equal(t, 0, GetRetryCount(ErrCodeInvalidStatusTransition))
	assert.Equal(t, 0, GetRetryCount(ErrorCode("APPROVAL_ADVANCE_FAILED")))
}

func TestConvertToBPMNError_RetryableCode(t *testing.T) {
	bpmnErr := ConvertToBPMNError(&StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "model unavailable",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	})

	assert.Equal(t, "SCORING_FAILED", bpmnErr.Code)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.True(t, bpmnErr.Retryable)
}

func TestConvertToBPMNError_NonRetryableZeroesRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(&StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "bad input",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	})

	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)
}
