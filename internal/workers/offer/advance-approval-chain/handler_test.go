package advanceapprovalchain

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/store"
)

type fakeEmailSender struct {
	to, subject string
	calls       int
}

func (f *fakeEmailSender) SendPlainEmail(_ context.Context, _, to, subject, _ string) (string, error) {
	f.calls++
	f.to, f.subject = to, subject
	return "msg-1", nil
}

func newFixture(t *testing.T, email EmailSender) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(), store.NewOfferStore(db), email, "talent@hiresphere.io", nil, logger.NewTestLogger(t))
	return h, mock
}

func expectOffer(mock sqlmock.Sqlmock, id, status, approvers string) {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "application_id", "job_title", "base_salary", "bonus", "equity_shares",
		"currency", "start_date", "expires_at", "status", "approvers",
		"created_at", "updated_at",
	}).AddRow(id, "app-1", "Backend Engineer", 120000, 0, 0,
		"USD", nil, nil, status, []byte(approvers), now, now)
	mock.ExpectQuery(`SELECT .+ FROM offers WHERE id = \$1`).
		WithArgs(id).WillReturnRows(rows)
}

func TestExecute_NotifiesNextApprover(t *testing.T) {
	email := &fakeEmailSender{}
	h, mock := newFixture(t, email)

	expectOffer(mock, "offer-1", "pending_approval", `[
		{"email":"hm@example.com","order":1,"decision":"approved"},
		{"email":"vp@example.com","order":2,"decision":"pending"}
	]`)

	output, err := h.Execute(context.Background(), &Input{OfferID: "offer-1"})
	require.NoError(t, err)

	assert.Equal(t, "pending_approval", output.Status)
	assert.Equal(t, "vp@example.com", output.NextApprover)
	assert.True(t, output.Notified)
	assert.Equal(t, "vp@example.com", email.to)
	assert.Contains(t, email.subject, "Backend Engineer")
}

func TestExecute_ApprovedNotifiesRecruitingTeam(t *testing.T) {
	email := &fakeEmailSender{}
	h, mock := newFixture(t, email)

	expectOffer(mock, "offer-1", "approved", `[
		{"email":"hm@example.com","order":1,"decision":"approved"}
	]`)

	output, err := h.Execute(context.Background(), &Input{OfferID: "offer-1"})
	require.NoError(t, err)

	assert.Equal(t, "approved", output.Status)
	assert.Empty(t, output.NextApprover)
	assert.True(t, output.Notified)
	assert.Equal(t, "talent@hiresphere.io", email.to)
	assert.Contains(t, email.subject, "approved")
}

func TestExecute_SentOfferIsTerminal(t *testing.T) {
	email := &fakeEmailSender{}
	h, mock := newFixture(t, email)

	expectOffer(mock, "offer-1", "sent", `[]`)

	output, err := h.Execute(context.Background(), &Input{OfferID: "offer-1"})
	require.NoError(t, err)

	assert.Equal(t, "sent", output.Status)
	assert.False(t, output.Notified)
	assert.Zero(t, email.calls)
}

func TestExecute_DraftOfferRejected(t *testing.T) {
	h, mock := newFixture(t, &fakeEmailSender{})

	expectOffer(mock, "offer-1", "draft", `[]`)

	_, err := h.Execute(context.Background(), &Input{OfferID: "offer-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrApprovalAdvanceFailed)
}

func TestExecute_UnknownOffer(t *testing.T) {
	h, mock := newFixture(t, &fakeEmailSender{})

	mock.ExpectQuery(`SELECT .+ FROM offers WHERE id = \$1`).
		WithArgs("missing").WillReturnError(store.ErrNotFound)

	_, err := h.Execute(context.Background(), &Input{OfferID: "missing"})
	require.Error(t, err)
}
