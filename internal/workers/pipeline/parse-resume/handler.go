package parseresume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"hiresphere-backend/internal/activity"
	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/resume"
	"hiresphere-backend/internal/store"
)

const TaskType = "parse-resume"

var (
	ErrResumeParseFailed = errors.New("RESUME_PARSE_FAILED")
	ErrResumeEmpty       = errors.New("RESUME_EMPTY")
)

type Handler struct {
	timeout      time.Duration
	applications *store.ApplicationStore
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(config *Config, applications *store.ApplicationStore, feed *activity.Feed, log logger.Logger) *Handler {
	return &Handler{
		timeout:      config.Timeout,
		applications: applications,
		feed:         feed,
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
		errorCode := "RESUME_PARSE_FAILED"
		if errors.Is(err, ErrResumeEmpty) {
			errorCode = "RESUME_EMPTY"
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrResumeParseFailed)
	}

	text := input.ResumeText
	if text == "" {
		app, err := h.applications.Get(ctx, input.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("%w: load application: %v", ErrResumeParseFailed, err)
		}
		text = app.ResumeText
	}
	if text == "" {
		return nil, fmt.Errorf("%w: application %s has no resume text", ErrResumeEmpty, input.ApplicationID)
	}

	parsed := resume.Parse(text)
	if err := h.applications.SetParsedProfile(ctx, input.ApplicationID, parsed); err != nil {
		return nil, fmt.Errorf("%w: store parsed profile: %v", ErrResumeParseFailed, err)
	}

	h.recordActivity(ctx, input.ApplicationID, parsed)

	h.logger.Info("resume parsed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"skillCount":    len(parsed.Skills),
		"hasEmail":      parsed.Email != "",
	})

	return &Output{
		ApplicationID: input.ApplicationID,
		Name:          parsed.Name,
		Email:         parsed.Email,
		Phone:         parsed.Phone,
		Skills:        parsed.Skills,
		YearsOfExp:    parsed.YearsOfExp,
		SectionCount:  len(parsed.Sections),
	}, nil
}

// recordActivity is best-effort; a Redis hiccup never fails the job
func (h *Handler) recordActivity(ctx context.Context, applicationID string, parsed *models.ParsedResume) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "resume-parser",
		Action:     "resume_parsed",
		EntityType: "application",
		EntityID:   applicationID,
		Detail: map[string]interface{}{
			"skills":     parsed.Skills,
			"yearsOfExp": parsed.YearsOfExp,
		},
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("activity record failed", map[string]interface{}{"error": err.Error()})
	}
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
