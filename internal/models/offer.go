package models

import "time"

// OfferStatus represents the lifecycle state of an offer
type OfferStatus string

const (
	OfferStatusDraft           OfferStatus = "draft"
	OfferStatusPendingApproval OfferStatus = "pending_approval"
	OfferStatusApproved        OfferStatus = "approved"
	OfferStatusSent            OfferStatus = "sent"
	OfferStatusAccepted        OfferStatus = "accepted"
	OfferStatusDeclined        OfferStatus = "declined"
)

// offerTransitions is the fixed offer sequence. A rejection during approval
// sends the offer back to draft for revision.
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferStatusDraft:           {OfferStatusPendingApproval},
	OfferStatusPendingApproval: {OfferStatusApproved, OfferStatusDraft},
	OfferStatusApproved:        {OfferStatusSent},
	OfferStatusSent:            {OfferStatusAccepted, OfferStatusDeclined},
	OfferStatusAccepted:        {},
	OfferStatusDeclined:        {},
}

// CanTransition reports whether the offer may move to the given status
func (s OfferStatus) CanTransition(to OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValid reports whether the status is a known value
func (s OfferStatus) IsValid() bool {
	_, ok := offerTransitions[s]
	return ok
}

// ApproverDecision is one approver's state within an approval chain
type ApproverDecision string

const (
	ApproverPending  ApproverDecision = "pending"
	ApproverApproved ApproverDecision = "approved"
	ApproverRejected ApproverDecision = "rejected"
)

// Approver is one step in an offer's ordered approval chain
type Approver struct {
	Email     string           `json:"email"`
	Name      string           `json:"name,omitempty"`
	Order     int              `json:"order"`
	Decision  ApproverDecision `json:"decision"`
	Comment   string           `json:"comment,omitempty"`
	DecidedAt *time.Time       `json:"decidedAt,omitempty"`
}

// Offer represents a compensation offer extended to a candidate
type Offer struct {
	ID            string      `json:"id" db:"id"`
	ApplicationID string      `json:"applicationId" db:"application_id"`
	JobTitle      string      `json:"jobTitle" db:"job_title"`
	BaseSalary    int         `json:"baseSalary" db:"base_salary"`
	Bonus         int         `json:"bonus,omitempty" db:"bonus"`
	EquityShares  int         `json:"equityShares,omitempty" db:"equity_shares"`
	Currency      string      `json:"currency" db:"currency"`
	StartDate     *time.Time  `json:"startDate,omitempty" db:"start_date"`
	ExpiresAt     *time.Time  `json:"expiresAt,omitempty" db:"expires_at"`
	Status        OfferStatus `json:"status" db:"status"`
	Approvers     []Approver  `json:"approvers" db:"approvers"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"`
}

// NextApprover returns the first approver in chain order that has not yet
// decided, or nil when the chain is exhausted.
func (o *Offer) NextApprover() *Approver {
	next := -1
	for i := range o.Approvers {
		if o.Approvers[i].Decision != ApproverPending {
			continue
		}
		if next == -1 || o.Approvers[i].Order < o.Approvers[next].Order {
			next = i
		}
	}
	if next == -1 {
		return nil
	}
	return &o.Approvers[next]
}

// ResetApprovals returns every approver to pending and clears prior
// decisions. A revised offer goes through the full chain again.
func (o *Offer) ResetApprovals() {
	for i := range o.Approvers {
		o.Approvers[i].Decision = ApproverPending
		o.Approvers[i].Comment = ""
		o.Approvers[i].DecidedAt = nil
	}
}

// AllApproved reports whether every approver in the chain has approved
func (o *Offer) AllApproved() bool {
	if len(o.Approvers) == 0 {
		return false
	}
	for _, a := range o.Approvers {
		if a.Decision != ApproverApproved {
			return false
		}
	}
	return true
}
