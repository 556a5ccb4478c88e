package sendnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"hiresphere-backend/internal/activity"
	"hiresphere-backend/internal/common/config"
	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/common/validation"
	"hiresphere-backend/internal/models"
)

const TaskType = "send-notification"

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrInvalidRecipient       = errors.New("INVALID_RECIPIENT")
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) (string, error)
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message, senderID string) (string, error)
}

type Handler struct {
	timeout      time.Duration
	notifConfig  *config.NotificationConfig
	senderID     string
	email        EmailSender
	sms          SMSSender
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(cfg *Config, notifConfig *config.NotificationConfig, senderID string, email EmailSender, sms SMSSender, feed *activity.Feed, log logger.Logger) *Handler {
	return &Handler{
		timeout:      cfg.Timeout,
		notifConfig:  notifConfig,
		senderID:     senderID,
		email:        email,
		sms:          sms,
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
		errorCode := "NOTIFICATION_SEND_FAILED"
		if errors.Is(err, ErrInvalidRecipient) {
			errorCode = "INVALID_RECIPIENT"
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
	if input.Recipient == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidRecipient)
	}
	if !validation.ValidateEmail(input.Recipient) {
		return nil, fmt.Errorf("%w: %s is not a valid email address", ErrInvalidRecipient, input.Recipient)
	}

	subject, body := h.render(input)
	if body == "" {
		return nil, fmt.Errorf("%w: no body and no template for type %q", ErrNotificationSendFailed, input.Type)
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Channels:       []string{},
	}

	if h.notifConfig.Email.Enabled && h.email != nil {
		messageID, err := h.email.SendPlainEmail(ctx, h.notifConfig.Email.FromEmail, input.Recipient, subject, body)
		if err != nil {
			return nil, fmt.Errorf("%w: send email: %v", ErrNotificationSendFailed, err)
		}
		output.MessageID = messageID
		output.Channels = append(output.Channels, "email")
		metrics.NotificationsSent.WithLabelValues("email").Inc()
	}

	if h.shouldSendSMS(input) {
		smsID, err := h.sms.SendSMS(ctx, input.Phone, body, h.senderID)
		if err != nil {
			// email already went out; do not fail the whole job
			h.logger.Warn("sms send failed", map[string]interface{}{
				"error": err.Error(),
				"type":  input.Type,
			})
		} else {
			output.SMSMessageID = smsID
			output.Channels = append(output.Channels, "sms")
			metrics.NotificationsSent.WithLabelValues("sms").Inc()
		}
	}

	if len(output.Channels) == 0 {
		return nil, fmt.Errorf("%w: no delivery channel enabled", ErrNotificationSendFailed)
	}

	h.recordActivity(ctx, input, output)

	h.logger.Info("notification sent", map[string]interface{}{
		"notificationId": output.NotificationID,
		"type":           input.Type,
		"channels":       output.Channels,
	})
	return output, nil
}

// shouldSendSMS gates the SMS channel on config, a phone number and the
// priority threshold ("high" means only high-priority events page the phone).
func (h *Handler) shouldSendSMS(input *Input) bool {
	if !h.notifConfig.SMS.Enabled || h.sms == nil || !validation.ValidatePhone(input.Phone) {
		return false
	}
	threshold := h.notifConfig.SMS.PriorityThreshold
	if threshold == "" || threshold == "normal" {
		return true
	}
	return strings.EqualFold(input.Priority, threshold)
}

// render fills in subject and body, falling back to the per-type templates
// when the caller supplied neither.
func (h *Handler) render(input *Input) (string, string) {
	subject, body := input.Subject, input.Body
	if body != "" {
		if subject == "" {
			subject = defaultSubject(input.Type)
		}
		return subject, body
	}

	name := payloadString(input.Payload, "candidateName")
	if name == "" {
		name = "there"
	}
	jobTitle := payloadString(input.Payload, "jobTitle")

	switch input.Type {
	case models.NotificationStatusChange:
		status := payloadString(input.Payload, "status")
		return fmt.Sprintf("Update on your application for %s", jobTitle),
			fmt.Sprintf("Hi %s,\n\nYour application for %s has moved to the %s stage.\n\nThe Talent Team", name, jobTitle, status)
	case models.NotificationInterviewReminder:
		when := payloadString(input.Payload, "scheduledAt")
		return fmt.Sprintf("Interview reminder: %s", jobTitle),
			fmt.Sprintf("Hi %s,\n\nThis is a reminder of your upcoming interview for %s at %s.\n\nThe Talent Team", name, jobTitle, when)
	case models.NotificationOfferSent:
		return fmt.Sprintf("Your offer for %s", jobTitle),
			fmt.Sprintf("Hi %s,\n\nWe are delighted to extend you an offer for %s. Please review the attached details and respond before the expiry date.\n\nThe Talent Team", name, jobTitle)
	}
	return subject, ""
}

func defaultSubject(notificationType string) string {
	if notificationType == "" {
		return "Notification from the hiring team"
	}
	return "Notification: " + strings.ReplaceAll(notificationType, "_", " ")
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

func (h *Handler) recordActivity(ctx context.Context, input *Input, output *Output) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "notification-dispatcher",
		Action:     "notification_sent",
		EntityType: "notification",
		EntityID:   output.NotificationID,
		Detail: map[string]interface{}{
			"type":     input.Type,
			"channels": output.Channels,
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
