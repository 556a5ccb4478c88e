package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiresphere-backend/internal/models"
)

// OfferStore persists offers and their approval chains
type OfferStore struct {
	db *sql.DB
}

func NewOfferStore(db *sql.DB) *OfferStore {
	return &OfferStore{db: db}
}

const offerColumns = `
	id, application_id, job_title, base_salary, bonus, equity_shares,
	currency, start_date, expires_at, status, approvers, created_at, updated_at`

func (s *OfferStore) scanOffer(row interface {
	Scan(dest ...interface{}) error
}) (*models.Offer, error) {
	var o models.Offer
	var approvers []byte
	err := row.Scan(
		&o.ID, &o.ApplicationID, &o.JobTitle, &o.BaseSalary, &o.Bonus,
		&o.EquityShares, &o.Currency, &o.StartDate, &o.ExpiresAt,
		&o.Status, &approvers, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(approvers, &o.Approvers); err != nil {
		return nil, fmt.Errorf("decode approvers: %w", err)
	}
	return &o, nil
}

func (s *OfferStore) Create(ctx context.Context, o *models.Offer) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = models.OfferStatusDraft
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	for i := range o.Approvers {
		if o.Approvers[i].Decision == "" {
			o.Approvers[i].Decision = models.ApproverPending
		}
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offers (`+offerColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		o.ID, o.ApplicationID, o.JobTitle, o.BaseSalary, o.Bonus,
		o.EquityShares, o.Currency, o.StartDate, o.ExpiresAt,
		o.Status, mustJSON(o.Approvers), now,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (s *OfferStore) Get(ctx context.Context, id string) (*models.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	o, err := s.scanOffer(row)
	if err != nil {
		return nil, mapNoRows(err, "offer "+id)
	}
	return o, nil
}

func (s *OfferStore) ListByApplication(ctx context.Context, applicationID string) ([]models.Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers
		 WHERE application_id = $1 ORDER BY created_at DESC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := s.scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *OfferStore) Update(ctx context.Context, o *models.Offer) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE offers
		SET job_title = $2, base_salary = $3, bonus = $4, equity_shares = $5,
		    currency = $6, start_date = $7, expires_at = $8, status = $9,
		    approvers = $10, updated_at = $11
		WHERE id = $1`,
		o.ID, o.JobTitle, o.BaseSalary, o.Bonus, o.EquityShares,
		o.Currency, o.StartDate, o.ExpiresAt, o.Status,
		mustJSON(o.Approvers), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: offer %s", ErrNotFound, o.ID)
	}
	return nil
}

// Transition moves an offer along the fixed sequence under a row lock.
// Entering pending_approval resets the approval chain so a resubmitted
// offer is reviewed from the start.
func (s *OfferStore) Transition(ctx context.Context, id string, to models.OfferStatus) (*models.Offer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin offer transition: %w", err)
	}
	defer tx.Rollback()

	o, err := s.lockOffer(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: offer %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	now := time.Now().UTC()
	if to == models.OfferStatusPendingApproval {
		o.ResetApprovals()
		if _, err := tx.ExecContext(ctx, `
			UPDATE offers SET status = $2, approvers = $3, updated_at = $4 WHERE id = $1`,
			id, to, mustJSON(o.Approvers), now,
		); err != nil {
			return nil, fmt.Errorf("update offer status: %w", err)
		}
	} else if _, err := tx.ExecContext(ctx, `
		UPDATE offers SET status = $2, updated_at = $3 WHERE id = $1`,
		id, to, now,
	); err != nil {
		return nil, fmt.Errorf("update offer status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit offer transition: %w", err)
	}

	o.Status = to
	o.UpdatedAt = now
	return o, nil
}

// RecordDecision applies one approver's decision in chain order. Only the
// next pending approver may decide; an approval by anyone else fails. A
// rejection returns the offer to draft, the final approval advances it to
// approved.
func (s *OfferStore) RecordDecision(ctx context.Context, id, approverEmail string, decision models.ApproverDecision, comment string) (*models.Offer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approval: %w", err)
	}
	defer tx.Rollback()

	o, err := s.lockOffer(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if o.Status != models.OfferStatusPendingApproval {
		return nil, fmt.Errorf("%w: offer %s is %s, not pending_approval", ErrInvalidTransition, id, o.Status)
	}

	next := o.NextApprover()
	if next == nil {
		return nil, fmt.Errorf("%w: offer %s has no pending approvers", ErrInvalidTransition, id)
	}
	if next.Email != approverEmail {
		return nil, fmt.Errorf("%w: %s is not next in chain (next is %s)", ErrApprovalOutOfOrder, approverEmail, next.Email)
	}

	now := time.Now().UTC()
	next.Decision = decision
	next.Comment = comment
	next.DecidedAt = &now

	switch {
	case decision == models.ApproverRejected:
		o.Status = models.OfferStatusDraft
	case o.AllApproved():
		o.Status = models.OfferStatusApproved
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE offers SET status = $2, approvers = $3, updated_at = $4 WHERE id = $1`,
		id, o.Status, mustJSON(o.Approvers), now,
	); err != nil {
		return nil, fmt.Errorf("record approval decision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}

	o.UpdatedAt = now
	return o, nil
}

func (s *OfferStore) lockOffer(ctx context.Context, tx *sql.Tx, id string) (*models.Offer, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1 FOR UPDATE`, id)
	o, err := s.scanOffer(row)
	if err != nil {
		return nil, mapNoRows(err, "offer "+id)
	}
	return o, nil
}
