// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hiresphere-backend/internal/activity"
	"hiresphere-backend/internal/ai"
	"hiresphere-backend/internal/api"
	"hiresphere-backend/internal/common/auth"
	"hiresphere-backend/internal/common/aws"
	"hiresphere-backend/internal/common/camunda"
	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/database"
	"hiresphere-backend/internal/common/email"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/observability"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/proctoring"
	"hiresphere-backend/internal/scheduler"
	"hiresphere-backend/internal/search"
	"hiresphere-backend/internal/store"
	"hiresphere-backend/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func proctoringPenalties(raw map[string]int) map[models.ProctoringEventType]int {
	if len(raw) == 0 {
		return nil
	}
	penalties := make(map[models.ProctoringEventType]int, len(raw))
	for event, points := range raw {
		penalties[models.ProctoringEventType(event)] = points
	}
	return penalties
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting API server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New("api-server", cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Zeebe client with retry ---
	// The API only starts evaluation process instances, it runs no job
	// workers.
	var pipeline *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		pipeline, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer pipeline.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Stores ---
	jobs := store.NewJobStore(pg.DB)
	applications := store.NewApplicationStore(pg.DB)
	assessments := store.NewAssessmentStore(pg.DB)
	offers := store.NewOfferStore(pg.DB)
	interviews := store.NewInterviewStore(pg.DB)
	training := store.NewTrainingStore(pg.DB)
	referrals := store.NewReferralStore(pg.DB)
	leads := store.NewLeadStore(pg.DB)

	// --- Domain services ---
	templates, err := registry.LoadRegistry(cfg.Assessments.RegistryPath)
	if err != nil {
		zapLog.Fatal("assessment template registry load failed",
			zap.String("path", cfg.Assessments.RegistryPath),
			zap.Error(err),
		)
	}
	zapLog.Info("assessment template registry loaded", zap.String("path", cfg.Assessments.RegistryPath))

	tracker := proctoring.NewTracker(redis.Client, proctoringPenalties(cfg.Assessments.Proctoring), log)
	feed := activity.NewFeed(redis.Client, 200, log)
	leadIndex := search.NewLeadIndex(esClient, cfg.Database.Elasticsearch.LeadIndex, log)
	slotScheduler := scheduler.New(
		interviews,
		cfg.Scheduling.DailySlots,
		cfg.Scheduling.SlotMinutes,
		cfg.Scheduling.LookaheadDays,
		log,
	)
	generator := ai.NewGenerator(
		cfg.AI.APIKey,
		cfg.AI.Model,
		cfg.AI.MaxTokens,
		cfg.AI.Temperature,
		time.Duration(cfg.AI.Timeout)*time.Millisecond,
		log,
	)

	var mailer api.EmailSender
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, sesErr := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if sesErr != nil {
			zapLog.Fatal("ses client init failed", zap.Error(sesErr))
		}
		mailer = sesClient
		zapLog.Info("SES client initialized")
	} else if cfg.Integrations.SMTP.Host != "" {
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Integrations.SMTP.Host,
			Port:     cfg.Integrations.SMTP.Port,
			Username: cfg.Integrations.SMTP.Username,
			Password: cfg.Integrations.SMTP.Password,
			UseTLS:   cfg.Integrations.SMTP.UseTLS,
		})
		zapLog.Info("SMTP email transport initialized", zap.String("host", cfg.Integrations.SMTP.Host))
	}

	var verifier auth.TokenVerifier
	switch cfg.Auth.Mode {
	case "keycloak":
		verifier = auth.NewKeycloakVerifier(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
		zapLog.Info("using keycloak token verification", zap.String("realm", cfg.Auth.Keycloak.Realm))
	default:
		verifier = auth.NewLocalVerifier(cfg.Auth.Local.Secret)
		zapLog.Info("using local token verification")
	}

	// --- HTTP handlers ---
	router := api.NewRouter(api.RouterDependencies{
		Jobs:         api.NewJobHandler(jobs, log),
		Applications: api.NewApplicationHandler(applications, jobs, pipeline, log),
		Assessments:  api.NewAssessmentHandler(assessments, templates, tracker, log),
		Offers:       api.NewOfferHandler(offers, applications, log),
		Interviews:   api.NewInterviewHandler(interviews, applications, slotScheduler, log),
		Training:     api.NewTrainingHandler(training, applications, cfg.LMS.Integrations, log),
		Referrals:    api.NewReferralHandler(referrals, log),
		Leads:        api.NewLeadHandler(leads, leadIndex, log),
		Agents:       api.NewAgentHandler(feed, log),
		AI:           api.NewAIHandler(generator, offers, log),
		Email:        api.NewEmailHandler(mailer, cfg.Notifications.Email.FromEmail, log),

		Verifier: verifier,
		Limiter:  api.NewRedisLimiter(redis.Client),
		Logger:   log,
		Config:   cfg.API,
	})

	// --- Interview reminder sweep ---
	crons := cron.New()
	if cfg.Scheduling.ReminderCronSpec != "" && mailer != nil {
		sweep := scheduler.NewReminderSweep(
			interviews, applications, mailer,
			cfg.Notifications.Email.FromEmail,
			cfg.Scheduling.ReminderWindowH,
			log,
		)
		_, err := crons.AddFunc(cfg.Scheduling.ReminderCronSpec, func() {
			sent, err := sweep.Run(context.Background())
			if err != nil {
				zapLog.Error("reminder sweep failed", zap.Error(err))
				return
			}
			if sent > 0 {
				zapLog.Info("reminder sweep finished", zap.Int("sent", sent))
			}
		})
		if err != nil {
			zapLog.Fatal("invalid reminder cron spec", zap.Error(err))
		}
		zapLog.Info("interview reminder sweep scheduled", zap.String("cron", cfg.Scheduling.ReminderCronSpec))
	} else {
		zapLog.Info("interview reminder sweep disabled")
	}
	crons.Start()

	// --- Metrics & pprof Server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		zapLog.Info("Metrics server listening on :9090")
		if err := http.ListenAndServe(":9090", mux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- HTTP Server ---
	srv := &http.Server{
		Addr:         cfg.API.ListenAddress,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.API.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.API.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.API.ListenAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	cronCtx := crons.Stop()
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		zapLog.Warn("timed out waiting for scheduled jobs to finish")
	}

	zapLog.Info("API server stopped gracefully")
}
