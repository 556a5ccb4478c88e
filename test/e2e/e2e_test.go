// test/e2e/e2e_test.go
//
// Full-stack test against real PostgreSQL, Redis, Elasticsearch and Zeebe.
// Gated behind HIRESPHERE_E2E so the regular test run stays hermetic:
//
//	HIRESPHERE_E2E=1 go test ./test/e2e/...
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/database"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/proctoring"
	"hiresphere-backend/internal/scheduler"
	"hiresphere-backend/internal/search"
	"hiresphere-backend/internal/store"

	gradeassessment "hiresphere-backend/internal/workers/assessment/grade-assessment"
	computeintegrity "hiresphere-backend/internal/workers/assessment/compute-integrity-score"
	advanceapproval "hiresphere-backend/internal/workers/offer/advance-approval-chain"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	if os.Getenv("HIRESPHERE_E2E") == "" {
		fmt.Println("HIRESPHERE_E2E not set, skipping end-to-end tests")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         envOr("ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("starting full end-to-end test against real services")

	pg, rdb, es := assertServiceConnectivity(t, ctx, cfg)
	defer pg.Close()
	defer rdb.Close()

	createDatabaseTables(t, ctx, pg)

	log := logger.NewZapAdapter(zapLog)

	t.Run("hiring pipeline", func(t *testing.T) {
		testHiringPipeline(t, ctx, pg, rdb, log)
	})

	t.Run("offer approval chain", func(t *testing.T) {
		testOfferApprovalChain(t, ctx, pg, log)
	})

	t.Run("lead search index", func(t *testing.T) {
		testLeadSearchIndex(t, ctx, pg, es, cfg, log)
	})

	t.Run("interview scheduling", func(t *testing.T) {
		testInterviewScheduling(t, ctx, pg, cfg, log)
	})
}

func assertServiceConnectivity(t *testing.T, ctx context.Context, cfg *config.Config) (*database.PostgresClient, *database.RedisClient, *database.ElasticsearchClient) {
	t.Log("checking service connectivity...")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Log("PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Log("Redis connected")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "Elasticsearch client creation failed")
	require.NoError(t, es.Ping(), "Elasticsearch ping failed")
	t.Log("Elasticsearch connected")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "Zeebe topology request failed")
	t.Log("Zeebe connected")

	return pg, rdb, es
}

func createDatabaseTables(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	t.Log("creating database tables...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			department TEXT,
			location TEXT,
			employment_type TEXT,
			description TEXT,
			requirements JSONB,
			salary_min INTEGER,
			salary_max INTEGER,
			status TEXT NOT NULL,
			created_by TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL,
			candidate_name TEXT NOT NULL,
			candidate_email TEXT NOT NULL,
			candidate_phone TEXT,
			resume_text TEXT,
			resume_url TEXT,
			source TEXT,
			status TEXT NOT NULL,
			match_score INTEGER,
			score_summary TEXT,
			parsed_profile JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS applications_job_candidate_idx
			ON applications (job_id, LOWER(candidate_email))`,
		`CREATE TABLE IF NOT EXISTS application_events (
			id TEXT PRIMARY KEY,
			application_id TEXT NOT NULL,
			from_status TEXT,
			to_status TEXT NOT NULL,
			actor TEXT,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			skill TEXT,
			duration_minutes INTEGER,
			passing_score INTEGER,
			questions JSONB,
			proctoring JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_assignments (
			id TEXT PRIMARY KEY,
			assessment_id TEXT NOT NULL,
			application_id TEXT NOT NULL,
			status TEXT NOT NULL,
			answers JSONB,
			score INTEGER,
			integrity_score INTEGER,
			device_check JSONB,
			due_at TIMESTAMPTZ,
			started_at TIMESTAMPTZ,
			submitted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS offers (
			id TEXT PRIMARY KEY,
			application_id TEXT NOT NULL,
			job_title TEXT,
			base_salary INTEGER,
			bonus INTEGER,
			equity_shares INTEGER,
			currency TEXT,
			start_date TIMESTAMPTZ,
			expires_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			approvers JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interviews (
			id TEXT PRIMARY KEY,
			application_id TEXT NOT NULL,
			round TEXT,
			scheduled_at TIMESTAMPTZ,
			duration_minutes INTEGER,
			interviewers JSONB,
			meeting_link TEXT,
			kit_id TEXT,
			status TEXT NOT NULL,
			feedback_score INTEGER,
			feedback_notes TEXT,
			reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interview_kits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT,
			questions JSONB,
			rubric TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_leads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			headline TEXT,
			platform TEXT,
			profile_url TEXT UNIQUE,
			location TEXT,
			skills JSONB,
			email TEXT,
			contacted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS referrals (
			id TEXT PRIMARY KEY,
			referrer_name TEXT NOT NULL,
			referrer_email TEXT NOT NULL,
			candidate_name TEXT NOT NULL,
			candidate_email TEXT NOT NULL,
			job_id TEXT,
			relationship TEXT,
			note TEXT,
			status TEXT NOT NULL,
			bonus_amount INTEGER,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS training_modules (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT,
			duration_minutes INTEGER,
			content_url TEXT,
			mandatory BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS new_hire_trainings (
			id TEXT PRIMARY KEY,
			application_id TEXT NOT NULL,
			hire_name TEXT,
			hire_email TEXT,
			assigned_modules JSONB,
			completed_modules JSONB,
			start_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		_, err := pg.DB.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	t.Log("database tables ready")
}

// testHiringPipeline walks an application from applied through a graded
// assessment, using the real grading worker against live Postgres and Redis.
func testHiringPipeline(t *testing.T, ctx context.Context, pg *database.PostgresClient, rdb *database.RedisClient, log logger.Logger) {
	jobs := store.NewJobStore(pg.DB)
	applications := store.NewApplicationStore(pg.DB)
	assessments := store.NewAssessmentStore(pg.DB)
	tracker := proctoring.NewTracker(rdb.Client, nil, log)

	job := &models.Job{
		Title:          "Backend Engineer",
		Department:     "Engineering",
		Location:       "Remote",
		EmploymentType: "full_time",
		Description:    "Build and run the hiring platform services.",
		Requirements:   []string{"go", "postgresql"},
		SalaryMin:      90000,
		SalaryMax:      140000,
		Status:         models.JobStatusActive,
		CreatedBy:      "e2e",
	}
	require.NoError(t, jobs.Create(ctx, job))

	app := &models.Application{
		JobID:          job.ID,
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane.doe@example.com",
		ResumeText:     "Five years of Go and PostgreSQL experience.",
		Source:         "direct",
	}
	require.NoError(t, applications.Create(ctx, app))
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)

	_, err := applications.Transition(ctx, app.ID, models.ApplicationStatusShortlisted, "e2e", "strong resume")
	require.NoError(t, err)
	_, err = applications.Transition(ctx, app.ID, models.ApplicationStatusAssessment, "e2e", "")
	require.NoError(t, err)

	assessment := &models.Assessment{
		Title:           "Go Fundamentals",
		Skill:           "golang",
		DurationMinutes: 60,
		PassingScore:    70,
		Questions: []models.Question{
			{ID: "q1", Type: "multiple_choice", Prompt: "Zero value of a slice?", Options: []string{"nil", "empty"}, Answer: "nil", Points: 1},
			{ID: "q2", Type: "multiple_choice", Prompt: "Keyword to start a goroutine?", Options: []string{"go", "async"}, Answer: "go", Points: 1},
		},
	}
	require.NoError(t, assessments.Create(ctx, assessment))

	assignment := &models.TestAssignment{
		AssessmentID:  assessment.ID,
		ApplicationID: app.ID,
		DueAt:         time.Now().UTC().Add(48 * time.Hour),
	}
	require.NoError(t, assessments.Assign(ctx, assignment))

	_, err = assessments.TransitionAssignment(ctx, assignment.ID, models.AssignmentStatusInProgress)
	require.NoError(t, err)
	require.NoError(t, assessments.SaveAnswers(ctx, assignment.ID, map[string]string{"q1": "nil", "q2": "async"}))
	_, err = assessments.TransitionAssignment(ctx, assignment.ID, models.AssignmentStatusSubmitted)
	require.NoError(t, err)

	// One tab switch recorded during the attempt
	require.NoError(t, tracker.Record(ctx, models.ProctoringEvent{
		AssignmentID: assignment.ID,
		Type:         models.ProctoringEventTabSwitch,
		OccurredAt:   time.Now().UTC(),
	}))

	integrity := computeintegrity.NewHandler(computeintegrity.LoadConfig(), tracker, log)
	integrityOut, err := integrity.Execute(ctx, &computeintegrity.Input{AssignmentID: assignment.ID})
	require.NoError(t, err)
	assert.Equal(t, 95, integrityOut.IntegrityScore)
	assert.Equal(t, 1, integrityOut.EventCount)

	grader := gradeassessment.NewHandler(gradeassessment.LoadConfig(), assessments, tracker, nil, log)
	gradeOut, err := grader.Execute(ctx, &gradeassessment.Input{AssignmentID: assignment.ID})
	require.NoError(t, err)
	assert.Equal(t, 50, gradeOut.Score)
	assert.Equal(t, 95, gradeOut.IntegrityScore)
	assert.False(t, gradeOut.Passed)

	graded, err := assessments.GetAssignment(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusGraded, graded.Status)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 50, *graded.Score)

	// Grading cleared the proctoring events
	events, err := tracker.Events(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func testOfferApprovalChain(t *testing.T, ctx context.Context, pg *database.PostgresClient, log logger.Logger) {
	applications := store.NewApplicationStore(pg.DB)
	offers := store.NewOfferStore(pg.DB)

	app := &models.Application{
		JobID:          uuid.New().String(),
		CandidateName:  "Sam Offer",
		CandidateEmail: "sam.offer@example.com",
	}
	require.NoError(t, applications.Create(ctx, app))

	offer := &models.Offer{
		ApplicationID: app.ID,
		JobTitle:      "Backend Engineer",
		BaseSalary:    120000,
		Currency:      "USD",
		Approvers: []models.Approver{
			{Email: "manager@example.com", Order: 1, Decision: models.ApproverPending},
			{Email: "vp@example.com", Order: 2, Decision: models.ApproverPending},
		},
	}
	require.NoError(t, offers.Create(ctx, offer))

	_, err := offers.Transition(ctx, offer.ID, models.OfferStatusPendingApproval)
	require.NoError(t, err)

	// No SES in the loop, the worker reports the next approver without
	// sending mail.
	chain := advanceapproval.NewHandler(advanceapproval.LoadConfig(), offers, nil, "talent@example.com", nil, log)
	out, err := chain.Execute(ctx, &advanceapproval.Input{OfferID: offer.ID})
	require.NoError(t, err)
	assert.Equal(t, "manager@example.com", out.NextApprover)
	assert.False(t, out.Notified)

	_, err = offers.RecordDecision(ctx, offer.ID, "manager@example.com", models.ApproverApproved, "lgtm")
	require.NoError(t, err)

	out, err = chain.Execute(ctx, &advanceapproval.Input{OfferID: offer.ID})
	require.NoError(t, err)
	assert.Equal(t, "vp@example.com", out.NextApprover)

	updated, err := offers.RecordDecision(ctx, offer.ID, "vp@example.com", models.ApproverApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusApproved, updated.Status)
}

func testLeadSearchIndex(t *testing.T, ctx context.Context, pg *database.PostgresClient, es *database.ElasticsearchClient, cfg *config.Config, log logger.Logger) {
	leads := store.NewLeadStore(pg.DB)
	index := search.NewLeadIndex(es, cfg.Database.Elasticsearch.LeadIndex, log)

	lead := &models.CandidateLead{
		Name:       "Indexed Lead",
		Headline:   "Go developer building distributed systems",
		Platform:   "github",
		ProfileURL: fmt.Sprintf("https://github.com/e2e-lead-%s", uuid.New().String()[:8]),
		Location:   "Berlin",
		Skills:     []string{"go", "kubernetes"},
	}
	require.NoError(t, leads.Upsert(ctx, lead))
	require.NoError(t, index.Index(ctx, lead))

	// Elasticsearch indexing is near-real-time
	time.Sleep(1500 * time.Millisecond)

	results, err := index.Query(ctx, "distributed systems", "github", 10)
	require.NoError(t, err)

	found := false
	for _, hit := range results {
		if hit.ID == lead.ID {
			found = true
		}
	}
	assert.True(t, found, "indexed lead should be searchable")

	require.NoError(t, index.Delete(ctx, lead.ID))
}

func testInterviewScheduling(t *testing.T, ctx context.Context, pg *database.PostgresClient, cfg *config.Config, log logger.Logger) {
	interviews := store.NewInterviewStore(pg.DB)
	sched := scheduler.New(
		interviews,
		cfg.Scheduling.DailySlots,
		cfg.Scheduling.SlotMinutes,
		cfg.Scheduling.LookaheadDays,
		log,
	)

	interviewers := []string{fmt.Sprintf("e2e-%s@example.com", uuid.New().String()[:8])}

	slot, err := sched.FindSlot(ctx, time.Now(), interviewers)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.True(t, slot.Start.After(time.Now()))

	iv := &models.Interview{
		ApplicationID: uuid.New().String(),
		Round:         "technical",
		ScheduledAt:   slot.Start,
		DurationMin:   cfg.Scheduling.SlotMinutes,
		Interviewers:  interviewers,
		Status:        models.InterviewStatusScheduled,
	}
	require.NoError(t, interviews.Create(ctx, iv))

	// The booked slot no longer comes back for the same interviewer
	next, err := sched.FindSlot(ctx, time.Now(), interviewers)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, slot.Start, next.Start)
}
