package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// TrainingStore persists training modules and per-hire progress
type TrainingStore struct {
	db *sql.DB
}

func NewTrainingStore(db *sql.DB) *TrainingStore {
	return &TrainingStore{db: db}
}

func (s *TrainingStore) CreateModule(ctx context.Context, m *models.TrainingModule) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_modules (id, title, category, duration_minutes, content_url, mandatory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		m.ID, m.Title, m.Category, m.DurationMinutes, m.ContentURL, m.Mandatory, now,
	)
	if err != nil {
		return fmt.Errorf("insert training module: %w", err)
	}
	return nil
}

func (s *TrainingStore) ListModules(ctx context.Context) ([]models.TrainingModule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, duration_minutes, content_url, mandatory, created_at, updated_at
		FROM training_modules ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list training modules: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingModule
	for rows.Next() {
		var m models.TrainingModule
		if err := rows.Scan(&m.ID, &m.Title, &m.Category, &m.DurationMinutes,
			&m.ContentURL, &m.Mandatory, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const trainingColumns = `
	id, application_id, hire_name, hire_email, assigned_modules,
	completed_modules, start_date, created_at, updated_at`

func (s *TrainingStore) scanTraining(row interface {
	Scan(dest ...interface{}) error
}) (*models.NewHireTraining, error) {
	var t models.NewHireTraining
	var assigned, completed []byte
	err := row.Scan(
		&t.ID, &t.ApplicationID, &t.HireName, &t.HireEmail,
		&assigned, &completed, &t.StartDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(assigned, &t.AssignedModules); err != nil {
		return nil, fmt.Errorf("decode assigned modules: %w", err)
	}
	if err := scanJSON(completed, &t.CompletedModules); err != nil {
		return nil, fmt.Errorf("decode completed modules: %w", err)
	}
	return &t, nil
}

func (s *TrainingStore) CreateHireTraining(ctx context.Context, t *models.NewHireTraining) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO new_hire_trainings (`+trainingColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		t.ID, t.ApplicationID, t.HireName, t.HireEmail,
		mustJSON(t.AssignedModules), mustJSON(t.CompletedModules),
		t.StartDate, now,
	)
	if err != nil {
		return fmt.Errorf("insert hire training: %w", err)
	}
	return nil
}

func (s *TrainingStore) GetHireTraining(ctx context.Context, id string) (*models.NewHireTraining, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+trainingColumns+` FROM new_hire_trainings WHERE id = $1`, id)
	t, err := s.scanTraining(row)
	if err != nil {
		return nil, mapNoRows(err, "hire training "+id)
	}
	return t, nil
}

func (s *TrainingStore) ListHireTrainings(ctx context.Context) ([]models.NewHireTraining, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trainingColumns+` FROM new_hire_trainings ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list hire trainings: %w", err)
	}
	defer rows.Close()

	var out []models.NewHireTraining
	for rows.Next() {
		t, err := s.scanTraining(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// CompleteModule appends a module to the hire's completed list under a row
// lock. Completing the same module twice is a no-op.
func (s *TrainingStore) CompleteModule(ctx context.Context, id, moduleID string) (*models.NewHireTraining, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin complete module: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+trainingColumns+` FROM new_hire_trainings WHERE id = $1 FOR UPDATE`, id)
	t, err := s.scanTraining(row)
	if err != nil {
		return nil, mapNoRows(err, "hire training "+id)
	}

	assigned := false
	for _, m := range t.AssignedModules {
		if m == moduleID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, fmt.Errorf("%w: module %s not assigned to training %s", ErrNotFound, moduleID, id)
	}

	for _, m := range t.CompletedModules {
		if m == moduleID {
			return t, tx.Commit()
		}
	}

	t.CompletedModules = append(t.CompletedModules, moduleID)
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE new_hire_trainings SET completed_modules = $2, updated_at = $3 WHERE id = $1`,
		id, mustJSON(t.CompletedModules), now,
	); err != nil {
		return nil, fmt.Errorf("complete module: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete module: %w", err)
	}

	t.UpdatedAt = now
	return t, nil
}
