package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// InterviewStore persists interviews and interview kits
type InterviewStore struct {
	db *sql.DB
}

func NewInterviewStore(db *sql.DB) *InterviewStore {
	return &InterviewStore{db: db}
}

const interviewColumns = `
	id, application_id, round, scheduled_at, duration_minutes, interviewers,
	meeting_link, kit_id, status, feedback_score, feedback_notes,
	reminder_sent, created_at, updated_at`

func (s *InterviewStore) scanInterview(row interface {
	Scan(dest ...interface{}) error
}) (*models.Interview, error) {
	var iv models.Interview
	var interviewers []byte
	err := row.Scan(
		&iv.ID, &iv.ApplicationID, &iv.Round, &iv.ScheduledAt, &iv.DurationMin,
		&interviewers, &iv.MeetingLink, &iv.KitID, &iv.Status,
		&iv.FeedbackScore, &iv.FeedbackNotes, &iv.ReminderSent,
		&iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(interviewers, &iv.Interviewers); err != nil {
		return nil, fmt.Errorf("decode interviewers: %w", err)
	}
	return &iv, nil
}

func (s *InterviewStore) Create(ctx context.Context, iv *models.Interview) error {
	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	if iv.Status == "" {
		iv.Status = models.InterviewStatusScheduled
	}
	now := time.Now().UTC()
	iv.CreatedAt = now
	iv.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interviews (`+interviewColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		iv.ID, iv.ApplicationID, iv.Round, iv.ScheduledAt, iv.DurationMin,
		mustJSON(iv.Interviewers), iv.MeetingLink, iv.KitID, iv.Status,
		iv.FeedbackScore, iv.FeedbackNotes, iv.ReminderSent, now,
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (s *InterviewStore) Get(ctx context.Context, id string) (*models.Interview, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	iv, err := s.scanInterview(row)
	if err != nil {
		return nil, mapNoRows(err, "interview "+id)
	}
	return iv, nil
}

func (s *InterviewStore) ListByApplication(ctx context.Context, applicationID string) ([]models.Interview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE application_id = $1 ORDER BY scheduled_at ASC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()
	return s.collect(rows)
}

// ListScheduledBetween returns scheduled interviews in a time window,
// used for conflict detection and reminder sweeps.
func (s *InterviewStore) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Interview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE status = $1 AND scheduled_at >= $2 AND scheduled_at < $3
		 ORDER BY scheduled_at ASC`,
		models.InterviewStatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("list scheduled interviews: %w", err)
	}
	defer rows.Close()
	return s.collect(rows)
}

func (s *InterviewStore) collect(rows *sql.Rows) ([]models.Interview, error) {
	var out []models.Interview
	for rows.Next() {
		iv, err := s.scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

func (s *InterviewStore) Update(ctx context.Context, iv *models.Interview) error {
	iv.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE interviews
		SET round = $2, scheduled_at = $3, duration_minutes = $4,
		    interviewers = $5, meeting_link = $6, kit_id = $7, status = $8,
		    feedback_score = $9, feedback_notes = $10, reminder_sent = $11,
		    updated_at = $12
		WHERE id = $1`,
		iv.ID, iv.Round, iv.ScheduledAt, iv.DurationMin,
		mustJSON(iv.Interviewers), iv.MeetingLink, iv.KitID, iv.Status,
		iv.FeedbackScore, iv.FeedbackNotes, iv.ReminderSent, iv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: interview %s", ErrNotFound, iv.ID)
	}
	return nil
}

// MarkReminderSent flags an interview so the reminder sweep does not repeat it
func (s *InterviewStore) MarkReminderSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE interviews SET reminder_sent = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

func (s *InterviewStore) CreateKit(ctx context.Context, kit *models.InterviewKit) error {
	if kit.ID == "" {
		kit.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	kit.CreatedAt = now
	kit.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interview_kits (id, name, role, questions, rubric, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		kit.ID, kit.Name, kit.Role, mustJSON(kit.Questions), kit.Rubric, now,
	)
	if err != nil {
		return fmt.Errorf("insert interview kit: %w", err)
	}
	return nil
}

func (s *InterviewStore) GetKit(ctx context.Context, id string) (*models.InterviewKit, error) {
	var kit models.InterviewKit
	var questions []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, questions, rubric, created_at, updated_at
		FROM interview_kits WHERE id = $1`, id).Scan(
		&kit.ID, &kit.Name, &kit.Role, &questions, &kit.Rubric,
		&kit.CreatedAt, &kit.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "interview kit "+id)
	}
	if err := scanJSON(questions, &kit.Questions); err != nil {
		return nil, fmt.Errorf("decode kit questions: %w", err)
	}
	return &kit, nil
}

func (s *InterviewStore) ListKits(ctx context.Context) ([]models.InterviewKit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, questions, rubric, created_at, updated_at
		FROM interview_kits ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list interview kits: %w", err)
	}
	defer rows.Close()

	var out []models.InterviewKit
	for rows.Next() {
		var kit models.InterviewKit
		var questions []byte
		if err := rows.Scan(&kit.ID, &kit.Name, &kit.Role, &questions,
			&kit.Rubric, &kit.CreatedAt, &kit.UpdatedAt); err != nil {
			return nil, err
		}
		if err := scanJSON(questions, &kit.Questions); err != nil {
			return nil, err
		}
		out = append(out, kit)
	}
	return out, rows.Err()
}
