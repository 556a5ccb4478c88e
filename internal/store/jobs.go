package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// JobStore persists job postings
type JobStore struct {
	db *sql.DB
}

func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.JobStatusDraft
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, title, department, location, employment_type, description,
			requirements, salary_min, salary_max, status, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		job.ID, job.Title, job.Department, job.Location, job.EmploymentType,
		job.Description, mustJSON(job.Requirements), job.SalaryMin, job.SalaryMax,
		job.Status, job.CreatedBy, now,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	var requirements []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT j.id, j.title, j.department, j.location, j.employment_type,
		       j.description, j.requirements, j.salary_min, j.salary_max,
		       j.status, j.created_by, j.created_at, j.updated_at,
		       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
		FROM jobs j
		WHERE j.id = $1`, id).Scan(
		&job.ID, &job.Title, &job.Department, &job.Location, &job.EmploymentType,
		&job.Description, &requirements, &job.SalaryMin, &job.SalaryMax,
		&job.Status, &job.CreatedBy, &job.CreatedAt, &job.UpdatedAt,
		&job.ApplicantCount,
	)
	if err != nil {
		return nil, mapNoRows(err, "job "+id)
	}
	if err := scanJSON(requirements, &job.Requirements); err != nil {
		return nil, fmt.Errorf("decode job requirements: %w", err)
	}
	return &job, nil
}

func (s *JobStore) List(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	query := `
		SELECT j.id, j.title, j.department, j.location, j.employment_type,
		       j.description, j.requirements, j.salary_min, j.salary_max,
		       j.status, j.created_by, j.created_at, j.updated_at,
		       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
		FROM jobs j`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE j.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY j.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		var requirements []byte
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Department, &job.Location, &job.EmploymentType,
			&job.Description, &requirements, &job.SalaryMin, &job.SalaryMax,
			&job.Status, &job.CreatedBy, &job.CreatedAt, &job.UpdatedAt,
			&job.ApplicantCount,
		); err != nil {
			return nil, err
		}
		if err := scanJSON(requirements, &job.Requirements); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *JobStore) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET title = $2, department = $3, location = $4, employment_type = $5,
		    description = $6, requirements = $7, salary_min = $8, salary_max = $9,
		    status = $10, updated_at = $11
		WHERE id = $1`,
		job.ID, job.Title, job.Department, job.Location, job.EmploymentType,
		job.Description, mustJSON(job.Requirements), job.SalaryMin, job.SalaryMax,
		job.Status, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, job.ID)
	}
	return nil
}

// Transition moves a job along draft -> active -> closed under a row lock
func (s *JobStore) Transition(ctx context.Context, id string, to models.JobStatus) (*models.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin job transition: %w", err)
	}
	defer tx.Rollback()

	var status models.JobStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM jobs WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		return nil, mapNoRows(err, "job "+id)
	}

	if !status.CanTransition(to) {
		return nil, fmt.Errorf("%w: job %s -> %s", ErrInvalidTransition, status, to)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1`,
		id, to, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit job transition: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a job. Deleting an already-removed job is not an error so
// client retries stay idempotent.
func (s *JobStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}
