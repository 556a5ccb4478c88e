package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

func newOfflineGenerator() *Generator {
	// Empty API key forces the fallback paths
	return NewGenerator("", "", 0, 0, time.Second, logger.NewNoOpLogger())
}

func TestScoreApplication_KeywordOverlap(t *testing.T) {
	g := newOfflineGenerator()

	job := &models.Job{
		Title:        "Backend Engineer",
		Requirements: []string{"Go", "PostgreSQL", "Kubernetes", "Kafka"},
	}
	parsed := &models.ParsedResume{
		Skills: []string{"go", "postgresql", "docker"},
	}

	result, err := g.ScoreApplication(context.Background(), job, parsed)

	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.ElementsMatch(t, []string{"Go", "PostgreSQL"}, result.MatchingSkills)
	assert.ElementsMatch(t, []string{"Kubernetes", "Kafka"}, result.MissingSkills)
	assert.NotEmpty(t, result.Summary)
}

func TestScoreApplication_NoRequirements(t *testing.T) {
	g := newOfflineGenerator()

	result, err := g.ScoreApplication(context.Background(),
		&models.Job{Title: "Generalist"}, &models.ParsedResume{})

	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
}

func TestScoreApplication_NoMatchingSkills(t *testing.T) {
	g := newOfflineGenerator()

	job := &models.Job{Requirements: []string{"Rust", "WebAssembly"}}
	parsed := &models.ParsedResume{Skills: []string{"photoshop"}}

	result, err := g.ScoreApplication(context.Background(), job, parsed)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Len(t, result.MissingSkills, 2)
}

func TestGenerateJobDescription_Fallback(t *testing.T) {
	g := newOfflineGenerator()

	desc, err := g.GenerateJobDescription(context.Background(),
		"Backend Engineer", "Engineering", []string{"Go", "PostgreSQL"})

	require.NoError(t, err)
	assert.Contains(t, desc, "Backend Engineer")
	assert.Contains(t, desc, "Engineering")
	assert.Contains(t, desc, "- Go")
	assert.Contains(t, desc, "- PostgreSQL")
}

func TestExtractJSON(t *testing.T) {
	wrapped := "Here is the result:\n```json\n{\"score\": 80}\n```"
	assert.Equal(t, `{"score": 80}`, extractJSON(wrapped))

	plain := `{"score": 80}`
	assert.Equal(t, plain, extractJSON(plain))

	noJSON := "no json here"
	assert.Equal(t, noJSON, extractJSON(noJSON))
}

func TestGenerateInterviewQuestions_Fallback(t *testing.T) {
	g := newOfflineGenerator()

	questions, err := g.GenerateInterviewQuestions(context.Background(), "Backend Engineer", "distributed systems", 3)

	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Contains(t, questions[0], "Backend Engineer")
}

func TestGenerateOfferLetter_Fallback(t *testing.T) {
	g := newOfflineGenerator()

	letter, err := g.GenerateOfferLetter(context.Background(), "Alex Doe", &models.Offer{
		JobTitle:     "Backend Engineer",
		BaseSalary:   120000,
		Bonus:        10000,
		EquityShares: 500,
		Currency:     "USD",
	})

	require.NoError(t, err)
	assert.Contains(t, letter, "Alex Doe")
	assert.Contains(t, letter, "Backend Engineer")
	assert.Contains(t, letter, "120000 USD")
	assert.Contains(t, letter, "500 equity shares")
}
