package scoreapplication

type Input struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId,omitempty"`
}

type Output struct {
	ApplicationID  string   `json:"applicationId"`
	MatchScore     int      `json:"matchScore"`
	Summary        string   `json:"scoreSummary"`
	MatchingSkills []string `json:"matchingSkills"`
	MissingSkills  []string `json:"missingSkills"`
	Shortlisted    bool     `json:"shortlisted"`
}
