package models

import "time"

// ReferralStatus tracks a referral through review and reward
type ReferralStatus string

const (
	ReferralStatusSubmitted ReferralStatus = "submitted"
	ReferralStatusReviewed  ReferralStatus = "reviewed"
	ReferralStatusHired     ReferralStatus = "hired"
	ReferralStatusRewarded  ReferralStatus = "rewarded"
	ReferralStatusClosed    ReferralStatus = "closed"
)

// Referral is an employee-submitted candidate recommendation
type Referral struct {
	ID             string         `json:"id" db:"id"`
	ReferrerName   string         `json:"referrerName" db:"referrer_name"`
	ReferrerEmail  string         `json:"referrerEmail" db:"referrer_email"`
	CandidateName  string         `json:"candidateName" db:"candidate_name"`
	CandidateEmail string         `json:"candidateEmail" db:"candidate_email"`
	JobID          string         `json:"jobId,omitempty" db:"job_id"`
	Relationship   string         `json:"relationship,omitempty" db:"relationship"`
	Note           string         `json:"note,omitempty" db:"note"`
	Status         ReferralStatus `json:"status" db:"status"`
	BonusAmount    int            `json:"bonusAmount,omitempty" db:"bonus_amount"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}
