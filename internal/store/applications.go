package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// ApplicationStore persists applications and their pipeline audit log
type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

const applicationColumns = `
	id, job_id, candidate_name, candidate_email, candidate_phone,
	resume_text, resume_url, source, status, match_score, score_summary,
	parsed_profile, created_at, updated_at`

func (s *ApplicationStore) scanRow(row interface {
	Scan(dest ...interface{}) error
}) (*models.Application, error) {
	var app models.Application
	var parsed []byte
	err := row.Scan(
		&app.ID, &app.JobID, &app.CandidateName, &app.CandidateEmail,
		&app.CandidatePhone, &app.ResumeText, &app.ResumeURL, &app.Source,
		&app.Status, &app.MatchScore, &app.ScoreSummary, &parsed,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(parsed) > 0 && string(parsed) != "null" {
		app.ParsedProfile = &models.ParsedResume{}
		if err := scanJSON(parsed, app.ParsedProfile); err != nil {
			return nil, fmt.Errorf("decode parsed profile: %w", err)
		}
	}
	return &app, nil
}

// Create inserts an application. One candidate may only apply once per job;
// a second attempt returns ErrConflict.
func (s *ApplicationStore) Create(ctx context.Context, app *models.Application) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE job_id = $1 AND LOWER(candidate_email) = LOWER($2)
		)`, app.JobID, app.CandidateEmail).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate application: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s already applied to job %s", ErrConflict, app.CandidateEmail, app.JobID)
	}

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusApplied
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		app.ID, app.JobID, app.CandidateName, app.CandidateEmail,
		app.CandidatePhone, app.ResumeText, app.ResumeURL, app.Source,
		app.Status, app.MatchScore, app.ScoreSummary, optionalJSON(app.ParsedProfile), now,
	)
	if err != nil {
		// The unique index on (job_id, lower(candidate_email)) catches
		// submissions that raced past the existence check.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s already applied to job %s", ErrConflict, app.CandidateEmail, app.JobID)
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *ApplicationStore) Get(ctx context.Context, id string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := s.scanRow(row)
	if err != nil {
		return nil, mapNoRows(err, "application "+id)
	}
	return app, nil
}

func (s *ApplicationStore) ListByJob(ctx context.Context, jobID string, status models.ApplicationStatus) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id = $1`
	args := []interface{}{jobID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// Transition moves an application to a new pipeline stage, enforcing the
// transition table, and records the move in the audit log atomically.
func (s *ApplicationStore) Transition(ctx context.Context, id string, to models.ApplicationStatus, actor, note string) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	app, err := s.scanRow(row)
	if err != nil {
		return nil, mapNoRows(err, "application "+id)
	}

	if !app.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: application %s -> %s", ErrInvalidTransition, app.Status, to)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`,
		id, to, now,
	); err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO application_events (id, application_id, from_status, to_status, actor, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), id, string(app.Status), string(to), actor, note, now,
	); err != nil {
		return nil, fmt.Errorf("insert application event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}

	app.Status = to
	app.UpdatedAt = now
	return app, nil
}

// SetScore records the AI match score for an application
func (s *ApplicationStore) SetScore(ctx context.Context, id string, score int, summary string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET match_score = $2, score_summary = $3, updated_at = $4
		WHERE id = $1`,
		id, score, summary, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set match score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return nil
}

// SetParsedProfile stores the structured resume extraction for an application
func (s *ApplicationStore) SetParsedProfile(ctx context.Context, id string, p *models.ParsedResume) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET parsed_profile = $2, updated_at = $3 WHERE id = $1`,
		id, mustJSON(p), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set parsed profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return nil
}

// SetResumeText stores parsed resume text alongside the application
func (s *ApplicationStore) SetResumeText(ctx context.Context, id, text string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET resume_text = $2, updated_at = $3 WHERE id = $1`,
		id, text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set resume text: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return nil
}

// Events returns the audit trail for an application, oldest first
func (s *ApplicationStore) Events(ctx context.Context, applicationID string) ([]models.ApplicationEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, from_status, to_status, actor, note, created_at
		FROM application_events
		WHERE application_id = $1
		ORDER BY created_at ASC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list application events: %w", err)
	}
	defer rows.Close()

	var events []models.ApplicationEvent
	for rows.Next() {
		var ev models.ApplicationEvent
		if err := rows.Scan(&ev.ID, &ev.ApplicationID, &ev.FromStatus, &ev.ToStatus,
			&ev.Actor, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
