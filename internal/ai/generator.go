// Package ai proxies LLM content generation and candidate scoring, with
// deterministic fallbacks when no API key is configured or the provider
// fails.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

// Generator calls the LLM provider. A nil client (no API key) makes every
// method use its fallback path.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      logger.Logger
}

func NewGenerator(apiKey, model string, maxTokens int, temperature float32, timeout time.Duration, log logger.Logger) *Generator {
	g := &Generator{
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      log,
	}
	if g.model == "" {
		g.model = openai.GPT3Dot5Turbo
	}
	if g.maxTokens <= 0 {
		g.maxTokens = 500
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

// ScoreResult is the structured outcome of candidate scoring
type ScoreResult struct {
	Score          int      `json:"score"`
	Summary        string   `json:"summary"`
	MatchingSkills []string `json:"matchingSkills"`
	MissingSkills  []string `json:"missingSkills"`
}

// ScoreApplication rates a parsed resume against a job's requirements on a
// 0-100 scale. The LLM answer is used when available and well-formed;
// otherwise the keyword overlap score stands.
func (g *Generator) ScoreApplication(ctx context.Context, job *models.Job, parsed *models.ParsedResume) (*ScoreResult, error) {
	fallback := g.keywordScore(job, parsed)
	if g.client == nil {
		return fallback, nil
	}

	prompt := fmt.Sprintf(`Rate this candidate against the job requirements on a 0-100 scale.

Job title: %s
Requirements: %s

Candidate skills: %s
Years of experience: %d

Respond with JSON only: {"score": <0-100>, "summary": "<one sentence>", "matchingSkills": [...], "missingSkills": [...]}`,
		job.Title, strings.Join(job.Requirements, ", "),
		strings.Join(parsed.Skills, ", "), parsed.YearsOfExp)

	content, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("llm scoring failed, using keyword score", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
		return fallback, nil
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		g.logger.Warn("llm returned malformed score, using keyword score", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
		return fallback, nil
	}
	if result.Score < 0 || result.Score > 100 {
		return fallback, nil
	}
	return &result, nil
}

// GenerateJobDescription produces a posting body for the given role
func (g *Generator) GenerateJobDescription(ctx context.Context, title, department string, requirements []string) (string, error) {
	if g.client == nil {
		return fallbackJobDescription(title, department, requirements), nil
	}

	prompt := fmt.Sprintf(`Write a job description for the following role. Use plain prose with a short summary, a responsibilities list, and a requirements list.

Title: %s
Department: %s
Key requirements: %s`,
		title, department, strings.Join(requirements, ", "))

	content, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("llm generation failed, using template", map[string]interface{}{
			"title": title,
			"error": err.Error(),
		})
		return fallbackJobDescription(title, department, requirements), nil
	}
	return content, nil
}

// GenerateInterviewQuestions produces kit questions for a role and focus area
func (g *Generator) GenerateInterviewQuestions(ctx context.Context, role, focus string, count int) ([]string, error) {
	if count <= 0 {
		count = 5
	}
	if g.client == nil {
		return fallbackInterviewQuestions(role, focus, count), nil
	}

	prompt := fmt.Sprintf(`Write %d interview questions for a %s candidate. Focus area: %s.

Respond with JSON only: {"questions": ["...", "..."]}`, count, role, focus)

	content, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("llm generation failed, using template questions", map[string]interface{}{
			"role":  role,
			"error": err.Error(),
		})
		return fallbackInterviewQuestions(role, focus, count), nil
	}

	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil || len(parsed.Questions) == 0 {
		return fallbackInterviewQuestions(role, focus, count), nil
	}
	if len(parsed.Questions) > count {
		parsed.Questions = parsed.Questions[:count]
	}
	return parsed.Questions, nil
}

// GenerateOfferLetter drafts the letter body for an approved offer
func (g *Generator) GenerateOfferLetter(ctx context.Context, candidateName string, offer *models.Offer) (string, error) {
	if g.client == nil {
		return fallbackOfferLetter(candidateName, offer), nil
	}

	prompt := fmt.Sprintf(`Write a warm, professional offer letter body.

Candidate: %s
Role: %s
Base salary: %d %s
Bonus: %d
Equity shares: %d

Keep it under 300 words. Do not invent terms beyond these.`,
		candidateName, offer.JobTitle, offer.BaseSalary, offer.Currency,
		offer.Bonus, offer.EquityShares)

	content, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("llm generation failed, using template letter", map[string]interface{}{
			"offerId": offer.ID,
			"error":   err.Error(),
		})
		return fallbackOfferLetter(candidateName, offer), nil
	}
	return content, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// keywordScore computes the requirement overlap when no LLM is available
func (g *Generator) keywordScore(job *models.Job, parsed *models.ParsedResume) *ScoreResult {
	result := &ScoreResult{
		MatchingSkills: []string{},
		MissingSkills:  []string{},
	}

	if len(job.Requirements) == 0 {
		result.Score = 50
		result.Summary = "No requirements listed; neutral score assigned."
		return result
	}

	candidateSkills := make([]string, len(parsed.Skills))
	for i, s := range parsed.Skills {
		candidateSkills[i] = strings.ToLower(s)
	}

	for _, req := range job.Requirements {
		reqLower := strings.ToLower(req)
		matched := false
		for _, skill := range candidateSkills {
			if strings.Contains(reqLower, skill) || strings.Contains(skill, reqLower) {
				matched = true
				break
			}
		}
		if matched {
			result.MatchingSkills = append(result.MatchingSkills, req)
		} else {
			result.MissingSkills = append(result.MissingSkills, req)
		}
	}

	result.Score = len(result.MatchingSkills) * 100 / len(job.Requirements)
	result.Summary = fmt.Sprintf("Matches %d of %d listed requirements.",
		len(result.MatchingSkills), len(job.Requirements))
	return result
}

func fallbackJobDescription(title, department string, requirements []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We are hiring a %s to join our %s team.\n\n", title, department)
	b.WriteString("In this role you will own meaningful projects end to end, collaborate across teams, and grow with the company.\n")
	if len(requirements) > 0 {
		b.WriteString("\nWhat we are looking for:\n")
		for _, req := range requirements {
			fmt.Fprintf(&b, "- %s\n", req)
		}
	}
	return b.String()
}

func fallbackInterviewQuestions(role, focus string, count int) []string {
	base := []string{
		fmt.Sprintf("Walk me through a recent project you are proud of and your role in it as a %s.", role),
		fmt.Sprintf("How do you approach %s problems when requirements are unclear?", focus),
		"Describe a time you disagreed with a teammate. How was it resolved?",
		fmt.Sprintf("What would you look at first when debugging a production issue in a %s system?", focus),
		"Tell me about a piece of feedback that changed how you work.",
		fmt.Sprintf("How do you keep your %s skills current?", focus),
		"What does a successful first 90 days in this role look like to you?",
	}
	if count > len(base) {
		count = len(base)
	}
	return base[:count]
}

func fallbackOfferLetter(candidateName string, offer *models.Offer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", candidateName)
	fmt.Fprintf(&b, "We are delighted to offer you the position of %s.\n\n", offer.JobTitle)
	fmt.Fprintf(&b, "Your annual base salary will be %d %s.", offer.BaseSalary, offer.Currency)
	if offer.Bonus > 0 {
		fmt.Fprintf(&b, " You will also be eligible for a bonus of %d %s.", offer.Bonus, offer.Currency)
	}
	if offer.EquityShares > 0 {
		fmt.Fprintf(&b, " Your compensation includes %d equity shares, subject to the standard vesting schedule.", offer.EquityShares)
	}
	b.WriteString("\n\nWe believe you will be a great addition to the team and look forward to working with you.\n\nWarm regards,\nThe Talent Team")
	return b.String()
}

// extractJSON trims any prose the model wrapped around a JSON object
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}
