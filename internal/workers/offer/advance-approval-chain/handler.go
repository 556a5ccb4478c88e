package advanceapprovalchain

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
	"hiresphere-backend/internal/store"
)

const TaskType = "advance-approval-chain"

var ErrApprovalAdvanceFailed = errors.New("APPROVAL_ADVANCE_FAILED")

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) (string, error)
}

type Handler struct {
	timeout      time.Duration
	offers       *store.OfferStore
	email        EmailSender
	fromEmail    string
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(config *Config, offers *store.OfferStore, email EmailSender, fromEmail string, feed *activity.Feed, log logger.Logger) *Handler {
	return &Handler{
		timeout:      config.Timeout,
		offers:       offers,
		email:        email,
		fromEmail:    fromEmail,
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
		errorCode := "APPROVAL_ADVANCE_FAILED"
		if errors.Is(err, store.ErrNotFound) {
			errorCode = "RESOURCE_NOT_FOUND"
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
	if input.OfferID == "" {
		return nil, fmt.Errorf("%w: offerId is required", ErrApprovalAdvanceFailed)
	}

	offer, err := h.offers.Get(ctx, input.OfferID)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}

	output := &Output{OfferID: offer.ID, Status: string(offer.Status)}

	switch offer.Status {
	case models.OfferStatusPendingApproval:
		next := offer.NextApprover()
		if next == nil {
			return nil, fmt.Errorf("%w: offer %s pending approval with no pending approver", ErrApprovalAdvanceFailed, offer.ID)
		}
		output.NextApprover = next.Email
		output.Notified = h.notify(ctx, next.Email,
			fmt.Sprintf("Offer approval requested: %s", offer.JobTitle),
			fmt.Sprintf("An offer for %s (%d %s base) is waiting for your approval.",
				offer.JobTitle, offer.BaseSalary, offer.Currency))
	case models.OfferStatusApproved:
		// chain exhausted; tell the recruiting side the offer is ready to send
		output.Notified = h.notify(ctx, h.fromEmail,
			fmt.Sprintf("Offer approved: %s", offer.JobTitle),
			fmt.Sprintf("All approvers signed off on the offer for %s. It can now be sent to the candidate.", offer.JobTitle))
	case models.OfferStatusDraft:
		return nil, fmt.Errorf("%w: offer %s has not been submitted for approval", ErrApprovalAdvanceFailed, offer.ID)
	default:
		// sent, accepted or declined; nothing left to advance
	}

	h.recordActivity(ctx, output)

	h.logger.Info("approval chain advanced", map[string]interface{}{
		"offerId":      output.OfferID,
		"status":       output.Status,
		"nextApprover": output.NextApprover,
		"notified":     output.Notified,
	})
	return output, nil
}

// notify is best-effort; the chain state is authoritative and a mail outage
// must not fail the job
func (h *Handler) notify(ctx context.Context, to, subject, body string) bool {
	if h.email == nil || to == "" {
		return false
	}
	if _, err := h.email.SendPlainEmail(ctx, h.fromEmail, to, subject, body); err != nil {
		h.logger.Warn("approval notification failed", map[string]interface{}{
			"error": err.Error(),
			"to":    to,
		})
		return false
	}
	metrics.NotificationsSent.WithLabelValues("email").Inc()
	return true
}

func (h *Handler) recordActivity(ctx context.Context, output *Output) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "approval-chain",
		Action:     "approval_advanced",
		EntityType: "offer",
		EntityID:   output.OfferID,
		Detail: map[string]interface{}{
			"status":       output.Status,
			"nextApprover": output.NextApprover,
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
