package computeintegrityscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/proctoring"
)

const TaskType = "compute-integrity-score"

var ErrIntegrityScoreFailed = errors.New("INTEGRITY_SCORE_FAILED")

type Handler struct {
	timeout      time.Duration
	tracker      *proctoring.Tracker
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(config *Config, tracker *proctoring.Tracker, log logger.Logger) *Handler {
	return &Handler{
		timeout:      config.Timeout,
		tracker:      tracker,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errorHandler: commonerr.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INTEGRITY_SCORE_FAILED").Inc()
		h.failJob(client, job, "INTEGRITY_SCORE_FAILED", err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AssignmentID == "" {
		return nil, fmt.Errorf("%w: assignmentId is required", ErrIntegrityScoreFailed)
	}

	events, err := h.tracker.Events(ctx, input.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: load events: %v", ErrIntegrityScoreFailed, err)
	}

	byType := map[string]int{}
	for _, ev := range events {
		byType[string(ev.Type)]++
	}

	output := &Output{
		AssignmentID:   input.AssignmentID,
		IntegrityScore: h.tracker.ScoreEvents(events),
		EventCount:     len(events),
	}
	if len(byType) > 0 {
		output.EventsByType = byType
	}

	h.logger.Info("integrity score computed", map[string]interface{}{
		"assignmentId":   output.AssignmentID,
		"integrityScore": output.IntegrityScore,
		"eventCount":     output.EventCount,
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}

// failJob routes the failure through the shared error handler, which
// grants retryable codes their remaining retries before raising a BPMN
// error on the process instance.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	code := commonerr.ErrorCode(errorCode)
	h.errorHandler.HandleJobError(context.Background(), client, job, &commonerr.StandardError{
		Code:      code,
		Message:   errorMessage,
		Retryable: commonerr.IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
