package models

import "time"

// ApplicationStatus represents a candidate's position in the hiring pipeline
type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "applied"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusAssessment  ApplicationStatus = "assessment"
	ApplicationStatusInterview   ApplicationStatus = "interview"
	ApplicationStatusOffer       ApplicationStatus = "offer"
	ApplicationStatusHired       ApplicationStatus = "hired"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// applicationTransitions encodes the pipeline order. Rejection is allowed from
// any non-terminal stage; hired is only reachable from offer.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusApplied:     {ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusShortlisted: {ApplicationStatusAssessment, ApplicationStatusRejected},
	ApplicationStatusAssessment:  {ApplicationStatusInterview, ApplicationStatusRejected},
	ApplicationStatusInterview:   {ApplicationStatusOffer, ApplicationStatusRejected},
	ApplicationStatusOffer:       {ApplicationStatusHired, ApplicationStatusRejected},
	ApplicationStatusHired:       {},
	ApplicationStatusRejected:    {},
}

// CanTransition reports whether the pipeline allows moving to the given stage
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the stage ends the pipeline
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusHired || s == ApplicationStatusRejected
}

// IsValid reports whether the status is a known value
func (s ApplicationStatus) IsValid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// Application represents a candidate's application to a job
type Application struct {
	ID             string            `json:"id" db:"id"`
	JobID          string            `json:"jobId" db:"job_id"`
	CandidateName  string            `json:"candidateName" db:"candidate_name"`
	CandidateEmail string            `json:"candidateEmail" db:"candidate_email"`
	CandidatePhone string            `json:"candidatePhone,omitempty" db:"candidate_phone"`
	ResumeText     string            `json:"resumeText,omitempty" db:"resume_text"`
	ResumeURL      string            `json:"resumeUrl,omitempty" db:"resume_url"`
	Source         string            `json:"source,omitempty" db:"source"`
	Status         ApplicationStatus `json:"status" db:"status"`
	ParsedProfile  *ParsedResume     `json:"parsedProfile,omitempty" db:"parsed_profile"`
	MatchScore     *int              `json:"matchScore,omitempty" db:"match_score"`
	ScoreSummary   string            `json:"scoreSummary,omitempty" db:"score_summary"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

// ApplicationEvent is one entry in an application's audit log
type ApplicationEvent struct {
	ID            string    `json:"id" db:"id"`
	ApplicationID string    `json:"applicationId" db:"application_id"`
	FromStatus    string    `json:"fromStatus" db:"from_status"`
	ToStatus      string    `json:"toStatus" db:"to_status"`
	Actor         string    `json:"actor" db:"actor"`
	Note          string    `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
