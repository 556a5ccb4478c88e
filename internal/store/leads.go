package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// LeadStore persists sourced candidate leads. Search goes through
// Elasticsearch; Postgres remains the system of record.
type LeadStore struct {
	db *sql.DB
}

func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

const leadColumns = `
	id, name, headline, platform, profile_url, location, skills, email,
	contacted, created_at, updated_at`

// Upsert inserts a lead or refreshes an existing one keyed by profile URL,
// so repeated sourcing runs do not create duplicates.
func (s *LeadStore) Upsert(ctx context.Context, lead *models.CandidateLead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate_leads (`+leadColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (profile_url) DO UPDATE
		SET name = EXCLUDED.name, headline = EXCLUDED.headline,
		    location = EXCLUDED.location, skills = EXCLUDED.skills,
		    email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`,
		lead.ID, lead.Name, lead.Headline, lead.Platform, lead.ProfileURL,
		lead.Location, mustJSON(lead.Skills), lead.Email, lead.Contacted, now,
	)
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

func (s *LeadStore) Get(ctx context.Context, id string) (*models.CandidateLead, error) {
	var lead models.CandidateLead
	var skills []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM candidate_leads WHERE id = $1`, id).Scan(
		&lead.ID, &lead.Name, &lead.Headline, &lead.Platform, &lead.ProfileURL,
		&lead.Location, &skills, &lead.Email, &lead.Contacted,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "lead "+id)
	}
	if err := scanJSON(skills, &lead.Skills); err != nil {
		return nil, fmt.Errorf("decode lead skills: %w", err)
	}
	return &lead, nil
}

func (s *LeadStore) List(ctx context.Context, platform string) ([]models.CandidateLead, error) {
	query := `SELECT ` + leadColumns + ` FROM candidate_leads`
	args := []interface{}{}
	if platform != "" {
		query += ` WHERE platform = $1`
		args = append(args, platform)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []models.CandidateLead
	for rows.Next() {
		var lead models.CandidateLead
		var skills []byte
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Headline, &lead.Platform,
			&lead.ProfileURL, &lead.Location, &skills, &lead.Email,
			&lead.Contacted, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, err
		}
		if err := scanJSON(skills, &lead.Skills); err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func (s *LeadStore) MarkContacted(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidate_leads SET contacted = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark lead contacted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: lead %s", ErrNotFound, id)
	}
	return nil
}
