package parseresume

type Input struct {
	ApplicationID string `json:"applicationId"`
	ResumeText    string `json:"resumeText,omitempty"`
}

type Output struct {
	ApplicationID string   `json:"applicationId"`
	Name          string   `json:"candidateName"`
	Email         string   `json:"candidateEmail"`
	Phone         string   `json:"candidatePhone"`
	Skills        []string `json:"skills"`
	YearsOfExp    int      `json:"yearsOfExperience"`
	SectionCount  int      `json:"sectionCount"`
}
