package sendnotification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

type fakeEmailSender struct {
	from, to, subject, body string
	calls                   int
	err                     error
}

func (f *fakeEmailSender) SendPlainEmail(_ context.Context, from, to, subject, body string) (string, error) {
	f.calls++
	f.from, f.to, f.subject, f.body = from, to, subject, body
	if f.err != nil {
		return "", f.err
	}
	return "ses-msg-1", nil
}

type fakeSMSSender struct {
	phone, message string
	calls          int
	err            error
}

func (f *fakeSMSSender) SendSMS(_ context.Context, phone, message, _ string) (string, error) {
	f.calls++
	f.phone, f.message = phone, message
	if f.err != nil {
		return "", f.err
	}
	return "sns-msg-1", nil
}

func notifConfig(emailOn, smsOn bool, threshold string) *config.NotificationConfig {
	cfg := &config.NotificationConfig{}
	cfg.Email.Enabled = emailOn
	cfg.Email.FromEmail = "talent@hiresphere.io"
	cfg.SMS.Enabled = smsOn
	cfg.SMS.PriorityThreshold = threshold
	return cfg
}

func newHandler(t *testing.T, cfg *config.NotificationConfig, email EmailSender, sms SMSSender) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), cfg, "HireSphere", email, sms, nil, logger.NewTestLogger(t))
}

func TestExecute_SendsEmailFromTemplate(t *testing.T) {
	email := &fakeEmailSender{}
	h := newHandler(t, notifConfig(true, false, ""), email, nil)

	output, err := h.Execute(context.Background(), &Input{
		Recipient: "jane@example.com",
		Type:      models.NotificationStatusChange,
		Payload: map[string]interface{}{
			"candidateName": "Jane",
			"jobTitle":      "Backend Engineer",
			"status":        "screening",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, output.Channels)
	assert.Equal(t, "ses-msg-1", output.MessageID)
	assert.NotEmpty(t, output.NotificationID)
	assert.Equal(t, "talent@hiresphere.io", email.from)
	assert.Equal(t, "jane@example.com", email.to)
	assert.Contains(t, email.subject, "Backend Engineer")
	assert.Contains(t, email.body, "screening")
}

func TestExecute_HighPrioritySendsSMS(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	h := newHandler(t, notifConfig(true, true, "high"), email, sms)

	output, err := h.Execute(context.Background(), &Input{
		Recipient: "jane@example.com",
		Phone:     "+14155550101",
		Type:      models.NotificationOfferSent,
		Priority:  "high",
		Payload: map[string]interface{}{
			"candidateName": "Jane",
			"jobTitle":      "Backend Engineer",
		},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"email", "sms"}, output.Channels)
	assert.Equal(t, "sns-msg-1", output.SMSMessageID)
	assert.Equal(t, "+14155550101", sms.phone)
}

func TestExecute_NormalPrioritySkipsSMS(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	h := newHandler(t, notifConfig(true, true, "high"), email, sms)

	output, err := h.Execute(context.Background(), &Input{
		Recipient: "jane@example.com",
		Phone:     "+14155550101",
		Type:      models.NotificationStatusChange,
		Payload:   map[string]interface{}{"jobTitle": "Backend Engineer", "status": "applied"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, output.Channels)
	assert.Zero(t, sms.calls)
}

func TestExecute_SMSFailureDoesNotFailJob(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{err: errors.New("throttled")}
	h := newHandler(t, notifConfig(true, true, ""), email, sms)

	output, err := h.Execute(context.Background(), &Input{
		Recipient: "jane@example.com",
		Phone:     "+14155550101",
		Subject:   "Heads up",
		Body:      "Your interview moved.",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, output.Channels)
	assert.Empty(t, output.SMSMessageID)
	assert.Equal(t, 1, sms.calls)
}

func TestExecute_EmailFailure(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("ses unavailable")}
	h := newHandler(t, notifConfig(true, false, ""), email, nil)

	_, err := h.Execute(context.Background(), &Input{
		Recipient: "jane@example.com",
		Body:      "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotificationSendFailed)
}

func TestExecute_InvalidRecipient(t *testing.T) {
	h := newHandler(t, notifConfig(true, false, ""), &fakeEmailSender{}, nil)

	_, err := h.Execute(context.Background(), &Input{Recipient: "not-an-email", Body: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestExecute_UnknownTypeWithoutBody(t *testing.T) {
	h := newHandler(t, notifConfig(true, false, ""), &fakeEmailSender{}, nil)

	_, err := h.Execute(context.Background(), &Input{
		Recipient: "jane@example.com",
		Type:      "mystery",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotificationSendFailed)
}
