package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 415-555-0123
San Francisco, CA

EXPERIENCE
Software Engineer | Acme Corp | 2019 - 2023
- Built REST API services in Go and PostgreSQL
- Deployed with Docker and Kubernetes on AWS

EDUCATION
Bachelor of Science in Computer Science
Stanford University, GPA 3.8

SKILLS
Go, Python, PostgreSQL, Redis, Docker, Kubernetes, Git
`

func TestParse_ContactFields(t *testing.T) {
	parsed := Parse(sampleResume)

	assert.Equal(t, "Jane Doe", parsed.Name)
	assert.Equal(t, "jane.doe@example.com", parsed.Email)
	assert.NotEmpty(t, parsed.Phone)
}

func TestParse_Skills(t *testing.T) {
	parsed := Parse(sampleResume)

	assert.Contains(t, parsed.Skills, "go")
	assert.Contains(t, parsed.Skills, "python")
	assert.Contains(t, parsed.Skills, "postgresql")
	assert.Contains(t, parsed.Skills, "docker")
	assert.Contains(t, parsed.Skills, "kubernetes")
	assert.NotContains(t, parsed.Skills, "rust")
}

func TestParse_Sections(t *testing.T) {
	parsed := Parse(sampleResume)

	assert.Contains(t, parsed.Sections, "experience")
	assert.Contains(t, parsed.Sections, "education")
	assert.Contains(t, parsed.Sections["experience"], "Acme Corp")
	assert.Contains(t, parsed.Sections["education"], "Stanford")
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "a.b+tag@mail.co", ExtractEmail("contact a.b+tag@mail.co today"))
	assert.Empty(t, ExtractEmail("no email here"))
}

func TestExtractName_RejectsNonNameFirstLine(t *testing.T) {
	assert.Empty(t, ExtractName("Resume v2.1 (updated 2024)\nJane Doe"))
}

func TestExtractSkills_WordBoundaries(t *testing.T) {
	// "go" inside "algorithm" must not match
	skills := ExtractSkills("Designed an algorithm for routing")
	assert.NotContains(t, skills, "go")

	skills = ExtractSkills("写作 Go services, c++ tooling")
	assert.Contains(t, skills, "go")
	assert.Contains(t, skills, "c++")
}

func TestParse_YearsOfExperience(t *testing.T) {
	parsed := Parse("Senior engineer with 7+ years of experience in Go")
	assert.Equal(t, 7, parsed.YearsOfExp)
}
