package gradeassessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"hiresphere-backend/internal/activity"
	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/proctoring"
	"hiresphere-backend/internal/store"
)

const TaskType = "grade-assessment"

var ErrGradingFailed = errors.New("GRADING_FAILED")

type Handler struct {
	timeout      time.Duration
	assessments  *store.AssessmentStore
	tracker      *proctoring.Tracker
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(config *Config, assessments *store.AssessmentStore, tracker *proctoring.Tracker, feed *activity.Feed, log logger.Logger) *Handler {
	return &Handler{
		timeout:      config.Timeout,
		assessments:  assessments,
		tracker:      tracker,
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
		errorCode := "GRADING_FAILED"
		switch {
		case errors.Is(err, store.ErrNotFound):
			errorCode = "RESOURCE_NOT_FOUND"
		case errors.Is(err, store.ErrInvalidTransition):
			errorCode = "INVALID_STATUS_TRANSITION"
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
	if input.AssignmentID == "" {
		return nil, fmt.Errorf("%w: assignmentId is required", ErrGradingFailed)
	}

	assignment, err := h.assessments.GetAssignment(ctx, input.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	assessment, err := h.assessments.Get(ctx, assignment.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("load assessment: %w", err)
	}

	score, graded := gradeAnswers(assessment.Questions, assignment.Answers)

	integrity := 100
	if input.IntegrityScore != nil {
		integrity = *input.IntegrityScore
	} else if h.tracker != nil {
		integrity, err = h.tracker.Score(ctx, input.AssignmentID)
		if err != nil {
			h.logger.Warn("integrity score unavailable, defaulting to 100", map[string]interface{}{
				"error": err.Error(),
			})
			integrity = 100
		}
	}

	if err := h.assessments.SetGrade(ctx, input.AssignmentID, score, integrity); err != nil {
		return nil, err
	}

	output := &Output{
		AssignmentID:    input.AssignmentID,
		Score:           score,
		IntegrityScore:  integrity,
		Passed:          score >= assessment.PassingScore,
		GradedQuestions: graded,
	}

	h.clearEvents(ctx, input.AssignmentID)
	h.recordActivity(ctx, output)

	h.logger.Info("assignment graded", map[string]interface{}{
		"assignmentId":   output.AssignmentID,
		"score":          output.Score,
		"integrityScore": output.IntegrityScore,
		"passed":         output.Passed,
	})
	return output, nil
}

// gradeAnswers scores the auto-gradable questions as a 0-100 percentage of
// their point total. Coding and free-text questions are left for humans and
// carry no automatic points.
func gradeAnswers(questions []models.Question, answers map[string]string) (int, int) {
	total, earned, graded := 0, 0, 0
	for _, q := range questions {
		if q.Type != "multiple_choice" {
			continue
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		total += points
		graded++
		if strings.EqualFold(strings.TrimSpace(answers[q.ID]), strings.TrimSpace(q.Answer)) {
			earned += points
		}
	}
	if total == 0 {
		return 0, 0
	}
	return earned * 100 / total, graded
}

// clearEvents drops the buffered proctoring events once the grade is final
func (h *Handler) clearEvents(ctx context.Context, assignmentID string) {
	if h.tracker == nil {
		return
	}
	if err := h.tracker.Clear(ctx, assignmentID); err != nil {
		h.logger.Warn("clear proctoring events failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) recordActivity(ctx context.Context, output *Output) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "grader",
		Action:     "assessment_graded",
		EntityType: "assignment",
		EntityID:   output.AssignmentID,
		Detail: map[string]interface{}{
			"score":          output.Score,
			"integrityScore": output.IntegrityScore,
			"passed":         output.Passed,
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
