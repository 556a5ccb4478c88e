package scoreapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"hiresphere-backend/internal/activity"
	"hiresphere-backend/internal/ai"
	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/resume"
	"hiresphere-backend/internal/store"
)

const TaskType = "score-application"

var ErrScoringFailed = errors.New("SCORING_FAILED")

type Handler struct {
	config       *Config
	applications *store.ApplicationStore
	jobs         *store.JobStore
	generator    *ai.Generator
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(config *Config, applications *store.ApplicationStore, jobs *store.JobStore, generator *ai.Generator, feed *activity.Feed, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		applications: applications,
		jobs:         jobs,
		generator:    generator,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "SCORING_FAILED").Inc()
		h.failJob(client, job, "SCORING_FAILED", err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrScoringFailed)
	}

	app, err := h.applications.Get(ctx, input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: load application: %v", ErrScoringFailed, err)
	}

	jobID := input.JobID
	if jobID == "" {
		jobID = app.JobID
	}
	posting, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: load job: %v", ErrScoringFailed, err)
	}

	parsed := app.ParsedProfile
	if parsed == nil {
		parsed = resume.Parse(app.ResumeText)
	}

	result, err := h.generator.ScoreApplication(ctx, posting, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}

	if err := h.applications.SetScore(ctx, app.ID, result.Score, result.Summary); err != nil {
		return nil, fmt.Errorf("%w: store score: %v", ErrScoringFailed, err)
	}
	metrics.ApplicationsScored.Inc()

	shortlisted := false
	if h.config.ShortlistThreshold > 0 &&
		result.Score >= h.config.ShortlistThreshold &&
		app.Status == models.ApplicationStatusApplied {
		if _, err := h.applications.Transition(ctx, app.ID,
			models.ApplicationStatusShortlisted, "scorer", result.Summary); err != nil {
			h.logger.Warn("auto-shortlist failed", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err.Error(),
			})
		} else {
			shortlisted = true
		}
	}

	h.recordActivity(ctx, app.ID, result, shortlisted)

	h.logger.Info("application scored", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         posting.ID,
		"score":         result.Score,
		"shortlisted":   shortlisted,
	})

	return &Output{
		ApplicationID:  app.ID,
		MatchScore:     result.Score,
		Summary:        result.Summary,
		MatchingSkills: result.MatchingSkills,
		MissingSkills:  result.MissingSkills,
		Shortlisted:    shortlisted,
	}, nil
}

func (h *Handler) recordActivity(ctx context.Context, applicationID string, result *ai.ScoreResult, shortlisted bool) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "scorer",
		Action:     "application_scored",
		EntityType: "application",
		EntityID:   applicationID,
		Detail: map[string]interface{}{
			"score":       result.Score,
			"shortlisted": shortlisted,
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
