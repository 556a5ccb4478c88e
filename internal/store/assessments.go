package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// AssessmentStore persists assessment definitions and test assignments
type AssessmentStore struct {
	db *sql.DB
}

func NewAssessmentStore(db *sql.DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

func (s *AssessmentStore) Create(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, title, skill, duration_minutes, passing_score,
			questions, proctoring, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		a.ID, a.Title, a.Skill, a.DurationMinutes, a.PassingScore,
		mustJSON(a.Questions), mustJSON(a.Proctoring), now,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *AssessmentStore) Get(ctx context.Context, id string) (*models.Assessment, error) {
	var a models.Assessment
	var questions, proctoring []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, skill, duration_minutes, passing_score,
		       questions, proctoring, created_at, updated_at
		FROM assessments WHERE id = $1`, id).Scan(
		&a.ID, &a.Title, &a.Skill, &a.DurationMinutes, &a.PassingScore,
		&questions, &proctoring, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "assessment "+id)
	}
	if err := scanJSON(questions, &a.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := scanJSON(proctoring, &a.Proctoring); err != nil {
		return nil, fmt.Errorf("decode proctoring config: %w", err)
	}
	return &a, nil
}

func (s *AssessmentStore) List(ctx context.Context) ([]models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, skill, duration_minutes, passing_score,
		       questions, proctoring, created_at, updated_at
		FROM assessments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []models.Assessment
	for rows.Next() {
		var a models.Assessment
		var questions, proctoring []byte
		if err := rows.Scan(&a.ID, &a.Title, &a.Skill, &a.DurationMinutes,
			&a.PassingScore, &questions, &proctoring, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := scanJSON(questions, &a.Questions); err != nil {
			return nil, err
		}
		if err := scanJSON(proctoring, &a.Proctoring); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const assignmentColumns = `
	id, assessment_id, application_id, status, answers, score,
	integrity_score, device_check, due_at, started_at, submitted_at,
	created_at, updated_at`

func (s *AssessmentStore) scanAssignment(row interface {
	Scan(dest ...interface{}) error
}) (*models.TestAssignment, error) {
	var t models.TestAssignment
	var answers, deviceCheck []byte
	err := row.Scan(
		&t.ID, &t.AssessmentID, &t.ApplicationID, &t.Status, &answers,
		&t.Score, &t.IntegrityScore, &deviceCheck, &t.DueAt,
		&t.StartedAt, &t.SubmittedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(answers, &t.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if len(deviceCheck) > 0 && string(deviceCheck) != "null" {
		t.DeviceCheck = &models.DeviceCheck{}
		if err := scanJSON(deviceCheck, t.DeviceCheck); err != nil {
			return nil, fmt.Errorf("decode device check: %w", err)
		}
	}
	return &t, nil
}

func (s *AssessmentStore) Assign(ctx context.Context, t *models.TestAssignment) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.AssignmentStatusAssigned
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_assignments (`+assignmentColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		t.ID, t.AssessmentID, t.ApplicationID, t.Status, mustJSON(t.Answers),
		t.Score, t.IntegrityScore, mustJSON(t.DeviceCheck), t.DueAt,
		t.StartedAt, t.SubmittedAt, now,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *AssessmentStore) GetAssignment(ctx context.Context, id string) (*models.TestAssignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM test_assignments WHERE id = $1`, id)
	t, err := s.scanAssignment(row)
	if err != nil {
		return nil, mapNoRows(err, "assignment "+id)
	}
	return t, nil
}

func (s *AssessmentStore) ListAssignmentsByApplication(ctx context.Context, applicationID string) ([]models.TestAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM test_assignments
		 WHERE application_id = $1 ORDER BY created_at DESC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []models.TestAssignment
	for rows.Next() {
		t, err := s.scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// SetDeviceCheck records the pre-test check result on an assignment
func (s *AssessmentStore) SetDeviceCheck(ctx context.Context, id string, check *models.DeviceCheck) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE test_assignments SET device_check = $2, updated_at = $3 WHERE id = $1`,
		id, mustJSON(check), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set device check: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: assignment %s", ErrNotFound, id)
	}
	return nil
}

// TransitionAssignment enforces the assignment status order and stamps the
// started/submitted timestamps as appropriate.
func (s *AssessmentStore) TransitionAssignment(ctx context.Context, id string, to models.AssignmentStatus) (*models.TestAssignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assignment transition: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM test_assignments WHERE id = $1 FOR UPDATE`, id)
	t, err := s.scanAssignment(row)
	if err != nil {
		return nil, mapNoRows(err, "assignment "+id)
	}

	if !t.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: assignment %s -> %s", ErrInvalidTransition, t.Status, to)
	}

	now := time.Now().UTC()
	switch to {
	case models.AssignmentStatusInProgress:
		t.StartedAt = &now
	case models.AssignmentStatusSubmitted:
		t.SubmittedAt = &now
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE test_assignments
		SET status = $2, started_at = $3, submitted_at = $4, updated_at = $5
		WHERE id = $1`,
		id, to, t.StartedAt, t.SubmittedAt, now,
	); err != nil {
		return nil, fmt.Errorf("update assignment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assignment transition: %w", err)
	}

	t.Status = to
	t.UpdatedAt = now
	return t, nil
}

// SaveAnswers stores the candidate's current answers without changing status
func (s *AssessmentStore) SaveAnswers(ctx context.Context, id string, answers map[string]string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE test_assignments SET answers = $2, updated_at = $3 WHERE id = $1`,
		id, mustJSON(answers), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: assignment %s", ErrNotFound, id)
	}
	return nil
}

// SetGrade records the final score and integrity score and marks the
// assignment graded.
func (s *AssessmentStore) SetGrade(ctx context.Context, id string, score, integrityScore int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE test_assignments
		SET score = $2, integrity_score = $3, status = $4, updated_at = $5
		WHERE id = $1 AND status = $6`,
		id, score, integrityScore, models.AssignmentStatusGraded,
		time.Now().UTC(), models.AssignmentStatusSubmitted,
	)
	if err != nil {
		return fmt.Errorf("set grade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: assignment %s not in submitted state", ErrInvalidTransition, id)
	}
	return nil
}
