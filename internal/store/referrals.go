package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// ReferralStore persists employee referrals
type ReferralStore struct {
	db *sql.DB
}

func NewReferralStore(db *sql.DB) *ReferralStore {
	return &ReferralStore{db: db}
}

const referralColumns = `
	id, referrer_name, referrer_email, candidate_name, candidate_email,
	job_id, relationship, note, status, bonus_amount, created_at, updated_at`

func (s *ReferralStore) Create(ctx context.Context, r *models.Referral) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = models.ReferralStatusSubmitted
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO referrals (`+referralColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		r.ID, r.ReferrerName, r.ReferrerEmail, r.CandidateName, r.CandidateEmail,
		r.JobID, r.Relationship, r.Note, r.Status, r.BonusAmount, now,
	)
	if err != nil {
		return fmt.Errorf("insert referral: %w", err)
	}
	return nil
}

func (s *ReferralStore) Get(ctx context.Context, id string) (*models.Referral, error) {
	var r models.Referral
	err := s.db.QueryRowContext(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE id = $1`, id).Scan(
		&r.ID, &r.ReferrerName, &r.ReferrerEmail, &r.CandidateName,
		&r.CandidateEmail, &r.JobID, &r.Relationship, &r.Note, &r.Status,
		&r.BonusAmount, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "referral "+id)
	}
	return &r, nil
}

func (s *ReferralStore) List(ctx context.Context) ([]models.Referral, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+referralColumns+` FROM referrals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	defer rows.Close()

	var out []models.Referral
	for rows.Next() {
		var r models.Referral
		if err := rows.Scan(&r.ID, &r.ReferrerName, &r.ReferrerEmail,
			&r.CandidateName, &r.CandidateEmail, &r.JobID, &r.Relationship,
			&r.Note, &r.Status, &r.BonusAmount, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetStatus updates the referral state. A non-nil bonus records the payout
// amount alongside the status change.
func (s *ReferralStore) SetStatus(ctx context.Context, id string, status models.ReferralStatus, bonus *int) error {
	var (
		res sql.Result
		err error
	)
	if bonus != nil {
		res, err = s.db.ExecContext(ctx, `
			UPDATE referrals SET status = $2, bonus_amount = $3, updated_at = $4 WHERE id = $1`,
			id, status, *bonus, time.Now().UTC(),
		)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE referrals SET status = $2, updated_at = $3 WHERE id = $1`,
			id, status, time.Now().UTC(),
		)
	}
	if err != nil {
		return fmt.Errorf("set referral status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: referral %s", ErrNotFound, id)
	}
	return nil
}
