package scheduler

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

type recordingSender struct {
	to []string
}

func (r *recordingSender) SendPlainEmail(_ context.Context, _, to, _, _ string) (string, error) {
	r.to = append(r.to, to)
	return "msg", nil
}

func sweepFixture(t *testing.T) (*ReminderSweep, *recordingSender, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sender := &recordingSender{}
	sweep := NewReminderSweep(store.NewInterviewStore(db), store.NewApplicationStore(db),
		sender, "talent@hiresphere.io", 24, logger.NewTestLogger(t))
	return sweep, sender, mock
}

func interviewRow(id string, reminderSent bool, interviewers string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "application_id", "round", "scheduled_at", "duration_minutes",
		"interviewers", "meeting_link", "kit_id", "status", "feedback_score",
		"feedback_notes", "reminder_sent", "created_at", "updated_at",
	}).AddRow(id, "app-1", "technical", now.Add(3*time.Hour), 60,
		[]byte(interviewers), "https://meet.example.com/x", "", "scheduled",
		nil, "", reminderSent, now, now)
}

func applicationRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "job_id", "candidate_name", "candidate_email", "candidate_phone",
		"resume_text", "resume_url", "source", "status", "match_score",
		"score_summary", "parsed_profile", "created_at", "updated_at",
	}).AddRow("app-1", "job-1", "Jane Smith", "jane@example.com", "",
		"", "", "direct", "interview", nil, "", nil, now, now)
}

func TestSweep_SendsAndMarksReminder(t *testing.T) {
	sweep, sender, mock := sweepFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM interviews`).
		WillReturnRows(interviewRow("iv-1", false, `["lead@example.com"]`))
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1`).
		WithArgs("app-1").WillReturnRows(applicationRow())
	mock.ExpectExec(`UPDATE interviews SET reminder_sent = TRUE`).
		WithArgs("iv-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sent, err := sweep.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"jane@example.com", "lead@example.com"}, sender.to)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep_SkipsAlreadyReminded(t *testing.T) {
	sweep, sender, mock := sweepFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM interviews`).
		WillReturnRows(interviewRow("iv-1", true, `[]`))

	sent, err := sweep.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, sent)
	assert.Empty(t, sender.to)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep_EmptyWindow(t *testing.T) {
	sweep, _, mock := sweepFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM interviews`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "round", "scheduled_at", "duration_minutes",
			"interviewers", "meeting_link", "kit_id", "status", "feedback_score",
			"feedback_notes", "reminder_sent", "created_at", "updated_at",
		}))

	sent, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}
