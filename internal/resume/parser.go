// Package resume extracts structured candidate data from raw resume text.
package resume

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hiresphere-backend/internal/models"
)

// skillKeywords is the vocabulary matched against resume text. Matching is
// case-insensitive with word boundaries.
var skillKeywords = []string{
	// Languages
	"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go",
	"rust", "kotlin", "swift", "php", "scala", "perl",
	// Web
	"html", "css", "react", "angular", "vue", "node", "express", "django",
	"flask", "spring", "nextjs", "nestjs",
	// ML/AI
	"machine learning", "deep learning", "tensorflow", "pytorch", "keras",
	"scikit-learn", "pandas", "numpy", "nlp", "computer vision",
	"neural networks", "transformer",
	// Databases
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"cassandra", "dynamodb", "firebase",
	// Cloud/DevOps
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "terraform",
	"ansible", "linux", "git", "ci/cd", "microservices", "rest api", "graphql",
	// Tools and data
	"power bi", "tableau", "excel", "jupyter", "selenium", "data science",
	"data analytics", "data engineering", "etl", "statistics",
	// Process
	"agile", "scrum", "jira", "figma",
}

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\d{3,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
		regexp.MustCompile(`\d{10,12}`),
	}
	namePattern  = regexp.MustCompile(`^[A-Za-z\s.'-]+$`)
	yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*years?`)
)

// sectionHeadings maps a section key to the headings it may appear under
var sectionHeadings = map[string][]string{
	"education":      {"EDUCATION", "ACADEMIC", "QUALIFICATION"},
	"experience":     {"EXPERIENCE", "WORK EXPERIENCE", "EMPLOYMENT", "PROFESSIONAL EXPERIENCE"},
	"projects":       {"PROJECTS", "PERSONAL PROJECTS"},
	"certifications": {"CERTIFICATIONS", "CERTIFICATES"},
}

// Parse extracts contact details, skills, and named sections from resume text
func Parse(text string) *models.ParsedResume {
	parsed := &models.ParsedResume{
		Name:   ExtractName(text),
		Email:  ExtractEmail(text),
		Phone:  ExtractPhone(text),
		Skills: ExtractSkills(text),
	}

	sections := map[string]string{}
	for key, headings := range sectionHeadings {
		if content := ExtractSection(text, headings); content != "" {
			sections[key] = content
		}
	}
	if len(sections) > 0 {
		parsed.Sections = sections
	}

	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			parsed.YearsOfExp = years
		}
	}

	return parsed
}

// ExtractEmail returns the first email address found in the text
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone returns the first phone number found in the text
func ExtractPhone(text string) string {
	for _, pattern := range phonePatterns {
		if m := pattern.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// ExtractName returns the first line when it plausibly looks like a name
func ExtractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 50 && namePattern.MatchString(line) {
			return line
		}
		return ""
	}
	return ""
}

// ExtractSkills returns the skill keywords present in the text, sorted and
// deduplicated
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	found := map[string]bool{}

	for _, skill := range skillKeywords {
		pattern := regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(skill) + `($|[^a-z0-9+#])`)
		if pattern.MatchString(lower) {
			found[skill] = true
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// ExtractSection returns the body of the first matching section heading,
// ending at the next all-caps heading or end of text.
func ExtractSection(text string, headings []string) string {
	upper := strings.ToUpper(text)
	for _, heading := range headings {
		idx := strings.Index(upper, heading)
		if idx == -1 {
			continue
		}
		start := idx + len(heading)
		body := text[start:]

		// Trim a trailing ":" and the heading's own line break
		body = strings.TrimLeft(body, ": \t\r\n")

		if end := nextHeadingIndex(body); end != -1 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return ""
}

var headingLine = regexp.MustCompile(`(?m)^[A-Z][A-Z\s]{2,}[:]?\s*$`)

func nextHeadingIndex(body string) int {
	loc := headingLine.FindStringIndex(body)
	if loc == nil {
		return -1
	}
	return loc[0]
}
