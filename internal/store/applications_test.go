package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"hiresphere-backend/internal/models"
)

func appRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "job_id", "candidate_name", "candidate_email", "candidate_phone",
		"resume_text", "resume_url", "source", "status", "match_score",
		"score_summary", "parsed_profile", "created_at", "updated_at",
	})
}

func TestApplicationStore_Create_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-001", "jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := NewApplicationStore(db)
	app := &models.Application{
		JobID:          "job-001",
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
	}
	err = s.Create(context.Background(), app)

	assert.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-001", "jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	s := NewApplicationStore(db)
	err = s.Create(context.Background(), &models.Application{
		JobID:          "job-001",
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Create_DuplicateRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// A concurrent submission slips past the existence check; the unique
	// index rejects the insert and the violation maps to ErrConflict.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-001", "jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "applications_job_candidate_idx"})

	s := NewApplicationStore(db)
	err = s.Create(context.Background(), &models.Application{
		JobID:          "job-001",
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Transition_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs("app-001").
		WillReturnRows(appRows().AddRow(
			"app-001", "job-001", "Jane Doe", "jane@example.com", "",
			"", "", "", "applied", nil, "", nil, now, now,
		))
	mock.ExpectExec(`UPDATE applications SET status`).
		WithArgs("app-001", models.ApplicationStatusShortlisted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO application_events`).
		WithArgs(sqlmock.AnyArg(), "app-001", "applied", "shortlisted",
			"recruiter@corp.test", "strong resume", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := NewApplicationStore(db)
	app, err := s.Transition(context.Background(), "app-001",
		models.ApplicationStatusShortlisted, "recruiter@corp.test", "strong resume")

	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusShortlisted, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Transition_Invalid(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs("app-001").
		WillReturnRows(appRows().AddRow(
			"app-001", "job-001", "Jane Doe", "jane@example.com", "",
			"", "", "", "applied", nil, "", nil, now, now,
		))
	mock.ExpectRollback()

	s := NewApplicationStore(db)
	_, err = s.Transition(context.Background(), "app-001",
		models.ApplicationStatusOffer, "recruiter@corp.test", "")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(appRows())

	s := NewApplicationStore(db)
	_, err = s.Get(context.Background(), "missing")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestApplicationStore_SetScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE applications SET match_score`).
		WithArgs("app-001", 87, "strong skills overlap", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewApplicationStore(db)
	err = s.SetScore(context.Background(), "app-001", 87, "strong skills overlap")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
