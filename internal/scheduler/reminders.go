package scheduler

import (
	"context"
	"fmt"
	"time"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) (string, error)
}

// ReminderSweep mails candidates and interviewers about interviews coming up
// inside the configured window. It is meant to run on a cron.
type ReminderSweep struct {
	interviews   *store.InterviewStore
	applications *store.ApplicationStore
	email        EmailSender
	fromEmail    string
	window       time.Duration
	logger       logger.Logger
}

func NewReminderSweep(interviews *store.InterviewStore, applications *store.ApplicationStore, email EmailSender, fromEmail string, windowHours int, log logger.Logger) *ReminderSweep {
	if windowHours <= 0 {
		windowHours = 24
	}
	return &ReminderSweep{
		interviews:   interviews,
		applications: applications,
		email:        email,
		fromEmail:    fromEmail,
		window:       time.Duration(windowHours) * time.Hour,
		logger:       log,
	}
}

// Run sends reminders for every upcoming interview that has not had one yet
// and returns how many were sent. Per-interview failures are logged and
// skipped so one broken record cannot stall the sweep.
func (s *ReminderSweep) Run(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	upcoming, err := s.interviews.ListScheduledBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return 0, fmt.Errorf("list upcoming interviews: %w", err)
	}

	sent := 0
	for i := range upcoming {
		iv := &upcoming[i]
		if iv.ReminderSent {
			continue
		}
		if err := s.remind(ctx, iv); err != nil {
			s.logger.Warn("interview reminder failed", map[string]interface{}{
				"interviewId": iv.ID,
				"error":       err.Error(),
			})
			continue
		}
		if err := s.interviews.MarkReminderSent(ctx, iv.ID); err != nil {
			s.logger.Warn("mark reminder sent failed", map[string]interface{}{
				"interviewId": iv.ID,
				"error":       err.Error(),
			})
			continue
		}
		sent++
	}

	s.logger.Info("reminder sweep complete", map[string]interface{}{
		"upcoming": len(upcoming),
		"sent":     sent,
	})
	return sent, nil
}

func (s *ReminderSweep) remind(ctx context.Context, iv *models.Interview) error {
	app, err := s.applications.Get(ctx, iv.ApplicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}

	when := iv.ScheduledAt.Format("Mon, 02 Jan 2006 15:04 MST")
	subject := fmt.Sprintf("Interview reminder: %s round on %s", iv.Round, when)
	body := fmt.Sprintf("Hi %s,\n\nThis is a reminder of your %s interview on %s.", app.CandidateName, iv.Round, when)
	if iv.MeetingLink != "" {
		body += "\nJoin link: " + iv.MeetingLink
	}
	body += "\n\nThe Talent Team"

	if _, err := s.email.SendPlainEmail(ctx, s.fromEmail, app.CandidateEmail, subject, body); err != nil {
		return fmt.Errorf("email candidate: %w", err)
	}
	metrics.NotificationsSent.WithLabelValues("email").Inc()

	for _, interviewer := range iv.Interviewers {
		interviewerBody := fmt.Sprintf("Reminder: you are interviewing %s (%s round) on %s.", app.CandidateName, iv.Round, when)
		if _, err := s.email.SendPlainEmail(ctx, s.fromEmail, interviewer, subject, interviewerBody); err != nil {
			s.logger.Warn("interviewer reminder failed", map[string]interface{}{
				"interviewId": iv.ID,
				"to":          interviewer,
				"error":       err.Error(),
			})
			continue
		}
		metrics.NotificationsSent.WithLabelValues("email").Inc()
	}
	return nil
}
