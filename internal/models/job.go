package models

import "time"

// JobStatus represents the lifecycle state of a job posting
type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// jobTransitions lists the allowed status moves for a posting
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusDraft:  {JobStatusActive, JobStatusClosed},
	JobStatusActive: {JobStatusClosed},
	JobStatusClosed: {},
}

// CanTransition reports whether a posting may move from one status to another
func (s JobStatus) CanTransition(to JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValid reports whether the status is a known value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusClosed:
		return true
	}
	return false
}

// Job represents a job posting
type Job struct {
	ID             string    `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Department     string    `json:"department" db:"department"`
	Location       string    `json:"location,omitempty" db:"location"`
	EmploymentType string    `json:"employmentType,omitempty" db:"employment_type"`
	Description    string    `json:"description,omitempty" db:"description"`
	Requirements   []string  `json:"requirements" db:"requirements"`
	SalaryMin      int       `json:"salaryMin,omitempty" db:"salary_min"`
	SalaryMax      int       `json:"salaryMax,omitempty" db:"salary_max"`
	Status         JobStatus `json:"status" db:"status"`
	ApplicantCount int       `json:"applicantCount" db:"applicant_count"`
	CreatedBy      string    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
