package parseresume

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/store"
)

const fixtureResume = `Jane Smith
EMAIL: jane.smith@example.com
Phone: +1-415-555-0101

SKILLS
Go, PostgreSQL, Docker, Kubernetes

EXPERIENCE
5 years of experience building backend services.
`

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(), store.NewApplicationStore(db), nil, logger.NewTestLogger(t))
	return h, mock
}

func TestExecute_ParsesInlineResume(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("UPDATE applications SET parsed_profile").
		WithArgs("app-001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "app-001",
		ResumeText:    fixtureResume,
	})

	require.NoError(t, err)
	assert.Equal(t, "jane.smith@example.com", output.Email)
	assert.Contains(t, output.Skills, "go")
	assert.Contains(t, output.Skills, "postgresql")
	assert.Equal(t, 5, output.YearsOfExp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_LoadsResumeFromApplication(t *testing.T) {
	h, mock := newTestHandler(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1`).
		WithArgs("app-002").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "candidate_name", "candidate_email", "candidate_phone",
			"resume_text", "resume_url", "source", "status", "match_score",
			"score_summary", "parsed_profile", "created_at", "updated_at",
		}).AddRow(
			"app-002", "job-001", "Jane Smith", "jane@example.com", "",
			fixtureResume, "", "", "applied", nil, "", nil, now, now,
		))
	mock.ExpectExec("UPDATE applications SET parsed_profile").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{ApplicationID: "app-002"})

	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", output.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EmptyResume(t *testing.T) {
	h, mock := newTestHandler(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1`).
		WithArgs("app-003").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "candidate_name", "candidate_email", "candidate_phone",
			"resume_text", "resume_url", "source", "status", "match_score",
			"score_summary", "parsed_profile", "created_at", "updated_at",
		}).AddRow(
			"app-003", "job-001", "No Resume", "none@example.com", "",
			"", "", "", "applied", nil, "", nil, now, now,
		))

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "app-003"})

	assert.True(t, errors.Is(err, ErrResumeEmpty))
}

func TestExecute_MissingApplicationID(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})

	assert.True(t, errors.Is(err, ErrResumeParseFailed))
}
