package models

import "time"

// CandidateLead is a sourced profile discovered through outbound search
type CandidateLead struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Headline   string    `json:"headline,omitempty" db:"headline"`
	Platform   string    `json:"platform" db:"platform"` // "github", "behance", "stackoverflow", "devto"
	ProfileURL string    `json:"profileUrl" db:"profile_url"`
	Location   string    `json:"location,omitempty" db:"location"`
	Skills     []string  `json:"skills,omitempty" db:"skills"`
	Email      string    `json:"email,omitempty" db:"email"`
	Contacted  bool      `json:"contacted" db:"contacted"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
