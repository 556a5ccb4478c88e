package models

import "time"

// TrainingModule is one onboarding course unit
type TrainingModule struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Category        string    `json:"category,omitempty" db:"category"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	ContentURL      string    `json:"contentUrl,omitempty" db:"content_url"`
	Mandatory       bool      `json:"mandatory" db:"mandatory"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// NewHireTraining tracks one hire's progress through assigned modules
type NewHireTraining struct {
	ID               string    `json:"id" db:"id"`
	ApplicationID    string    `json:"applicationId" db:"application_id"`
	HireName         string    `json:"hireName" db:"hire_name"`
	HireEmail        string    `json:"hireEmail" db:"hire_email"`
	AssignedModules  []string  `json:"assignedModules" db:"assigned_modules"`
	CompletedModules []string  `json:"completedModules" db:"completed_modules"`
	StartDate        time.Time `json:"startDate" db:"start_date"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// Progress returns the completion percentage, counting only completed modules
// that are actually assigned.
func (t *NewHireTraining) Progress() int {
	if len(t.AssignedModules) == 0 {
		return 0
	}
	assigned := make(map[string]bool, len(t.AssignedModules))
	for _, m := range t.AssignedModules {
		assigned[m] = true
	}
	completed := 0
	for _, m := range t.CompletedModules {
		if assigned[m] {
			completed++
		}
	}
	return completed * 100 / len(t.AssignedModules)
}

// IsComplete reports whether every assigned module is completed
func (t *NewHireTraining) IsComplete() bool {
	return len(t.AssignedModules) > 0 && t.Progress() == 100
}
