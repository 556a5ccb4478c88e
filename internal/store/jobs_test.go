package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"hiresphere-backend/internal/models"
)

func jobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "department", "location", "employment_type",
		"description", "requirements", "salary_min", "salary_max", "status",
		"created_by", "created_at", "updated_at", "count",
	})
}

func TestJobStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO jobs`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := NewJobStore(db)
	job := &models.Job{
		Title:        "Backend Engineer",
		Department:   "Engineering",
		Requirements: []string{"Go", "PostgreSQL"},
	}
	err = s.Create(context.Background(), job)

	assert.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusDraft, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM jobs j`).
		WithArgs("job-001").
		WillReturnRows(jobRows().AddRow(
			"job-001", "Backend Engineer", "Engineering", "Remote", "full_time",
			"Build services", []byte(`["Go","PostgreSQL"]`), 120000, 160000,
			"active", "admin", now, now, 7,
		))

	s := NewJobStore(db)
	job, err := s.Get(context.Background(), "job-001")

	assert.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, job.Requirements)
	assert.Equal(t, 7, job.ApplicantCount)
}

func TestJobStore_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM jobs j`).
		WithArgs("missing").
		WillReturnRows(jobRows())

	s := NewJobStore(db)
	_, err = s.Get(context.Background(), "missing")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestJobStore_Transition_Activate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM jobs WHERE id = \$1 FOR UPDATE`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("draft"))
	mock.ExpectExec(`UPDATE jobs SET status`).
		WithArgs("job-001", models.JobStatusActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM jobs j`).
		WithArgs("job-001").
		WillReturnRows(jobRows().AddRow(
			"job-001", "Backend Engineer", "Engineering", "Remote", "full_time",
			"Build services", []byte(`["Go"]`), 120000, 160000,
			"active", "admin", now, now, 0,
		))

	s := NewJobStore(db)
	job, err := s.Transition(context.Background(), "job-001", models.JobStatusActive)

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Transition_ClosedJobStaysClosed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM jobs WHERE id = \$1 FOR UPDATE`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("closed"))
	mock.ExpectRollback()

	s := NewJobStore(db)
	_, err = s.Transition(context.Background(), "job-001", models.JobStatusActive)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Delete_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Second delete affects zero rows but still succeeds
	mock.ExpectExec(`DELETE FROM jobs`).
		WithArgs("job-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM jobs`).
		WithArgs("job-001").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewJobStore(db)
	assert.NoError(t, s.Delete(context.Background(), "job-001"))
	assert.NoError(t, s.Delete(context.Background(), "job-001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE jobs`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewJobStore(db)
	err = s.Update(context.Background(), &models.Job{ID: "missing", Status: models.JobStatusActive})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
