// cmd/pipeline-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hiresphere-backend/internal/activity"
	"hiresphere-backend/internal/ai"
	"hiresphere-backend/internal/common/aws"
	"hiresphere-backend/internal/common/camunda"
	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/database"
	"hiresphere-backend/internal/common/email"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/observability"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/proctoring"
	"hiresphere-backend/internal/search"
	"hiresphere-backend/internal/store"

	// Candidate pipeline workers
	pr "hiresphere-backend/internal/workers/pipeline/parse-resume"
	sa "hiresphere-backend/internal/workers/pipeline/score-application"
	sn "hiresphere-backend/internal/workers/pipeline/send-notification"

	// Assessment workers
	cis "hiresphere-backend/internal/workers/assessment/compute-integrity-score"
	ga "hiresphere-backend/internal/workers/assessment/grade-assessment"

	// Offer workers
	aac "hiresphere-backend/internal/workers/offer/advance-approval-chain"

	// Sourcing and reporting workers
	ehr "hiresphere-backend/internal/workers/reporting/export-hiring-report"
	dp "hiresphere-backend/internal/workers/talent/discover-profiles"
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

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return time.Duration(cfg.Workers[taskType].Timeout) * time.Millisecond
}

// proctoringPenalties converts the config map into typed event penalties.
// Empty input keeps the tracker defaults.
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

	zapLog.Info("Starting pipeline worker...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New("pipeline-worker", cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

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

	// --- Shared infrastructure ---
	applications := store.NewApplicationStore(pg.DB)
	jobs := store.NewJobStore(pg.DB)
	assessments := store.NewAssessmentStore(pg.DB)
	offers := store.NewOfferStore(pg.DB)
	leads := store.NewLeadStore(pg.DB)
	reports := store.NewReportStore(pg.DB)

	feed := activity.NewFeed(redis.Client, 200, log)
	tracker := proctoring.NewTracker(redis.Client, proctoringPenalties(cfg.Assessments.Proctoring), log)
	leadIndex := search.NewLeadIndex(esClient, cfg.Database.Elasticsearch.LeadIndex, log)
	generator := ai.NewGenerator(
		cfg.AI.APIKey,
		cfg.AI.Model,
		cfg.AI.MaxTokens,
		cfg.AI.Temperature,
		time.Duration(cfg.AI.Timeout)*time.Millisecond,
		log,
	)

	var mailer sn.EmailSender
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

	var snsClient *aws.SNSClient
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		zapLog.Info("SNS client initialized")
	}

	// --- Register Workers ---
	var activeWorkers []*camunda.PipelineWorker

	// Candidate pipeline
	if cfg.Workers[pr.TaskType].Enabled {
		handler := pr.NewHandler(
			&pr.Config{Timeout: workerTimeout(cfg, pr.TaskType)},
			applications, feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, pr.TaskType, cfg.Workers[pr.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[sa.TaskType].Enabled {
		handler := sa.NewHandler(
			&sa.Config{
				Timeout:            workerTimeout(cfg, sa.TaskType),
				ShortlistThreshold: sa.LoadConfig().ShortlistThreshold,
			},
			applications, jobs, generator, feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[sn.TaskType].Enabled {
		handler := sn.NewHandler(
			&sn.Config{Timeout: workerTimeout(cfg, sn.TaskType)},
			&cfg.Notifications,
			cfg.Integrations.AWS.SNS.DefaultSMSSenderID,
			mailer, smsSender(snsClient),
			feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, sn.TaskType, cfg.Workers[sn.TaskType], handler.Handle, zapLog))
	}

	// Assessments
	if cfg.Workers[ga.TaskType].Enabled {
		handler := ga.NewHandler(
			&ga.Config{Timeout: workerTimeout(cfg, ga.TaskType)},
			assessments, tracker, feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, ga.TaskType, cfg.Workers[ga.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[cis.TaskType].Enabled {
		handler := cis.NewHandler(
			&cis.Config{Timeout: workerTimeout(cfg, cis.TaskType)},
			tracker, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, cis.TaskType, cfg.Workers[cis.TaskType], handler.Handle, zapLog))
	}

	// Offers
	if cfg.Workers[aac.TaskType].Enabled {
		handler := aac.NewHandler(
			&aac.Config{Timeout: workerTimeout(cfg, aac.TaskType)},
			offers, mailer, cfg.Notifications.Email.FromEmail,
			feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, aac.TaskType, cfg.Workers[aac.TaskType], handler.Handle, zapLog))
	}

	// Talent sourcing
	var discovery *dp.Handler
	if cfg.Workers[dp.TaskType].Enabled {
		discovery = dp.NewHandler(
			&dp.Config{Timeout: workerTimeout(cfg, dp.TaskType)},
			cfg.Sourcing,
			dp.NewScraper(cfg.Sourcing, log),
			leads, leadIndex, feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, dp.TaskType, cfg.Workers[dp.TaskType], discovery.Handle, zapLog))
	}

	// Reporting
	if cfg.Workers[ehr.TaskType].Enabled {
		handler := ehr.NewHandler(
			&ehr.Config{Timeout: workerTimeout(cfg, ehr.TaskType)},
			reports, feed, log,
		)
		activeWorkers = append(activeWorkers, startWorker(zeebeClient, ehr.TaskType, cfg.Workers[ehr.TaskType], handler.Handle, zapLog))
	}

	zapLog.Info("All workers registered successfully")

	// --- Scheduled sourcing sweep ---
	scheduler := cron.New()
	if discovery != nil && cfg.Sourcing.CronSpec != "" {
		_, err := scheduler.AddFunc(cfg.Sourcing.CronSpec, func() {
			out, err := discovery.Execute(context.Background(), &dp.Input{})
			if err != nil {
				zapLog.Error("scheduled sourcing sweep failed", zap.Error(err))
				return
			}
			zapLog.Info("scheduled sourcing sweep finished",
				zap.Int("profilesFound", out.ProfilesFound),
				zap.Int("newLeads", out.NewLeads),
			)
		})
		if err != nil {
			zapLog.Fatal("invalid sourcing cron spec", zap.Error(err))
		}
		zapLog.Info("sourcing sweep scheduled", zap.String("cron", cfg.Sourcing.CronSpec))
	}
	scheduler.Start()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8081")
		if err := http.ListenAndServe(":8081", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(30 * time.Second):
		zapLog.Warn("timed out waiting for scheduled jobs to finish")
	}

	for _, w := range activeWorkers {
		if w != nil {
			w.Stop()
		}
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Pipeline worker stopped gracefully")
}

// smsSender keeps the notification handler's interface nil when SNS is
// disabled, so a typed nil pointer never masquerades as a live sender.
func smsSender(client *aws.SNSClient) sn.SMSSender {
	if client == nil {
		return nil
	}
	return client
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc, log *zap.Logger) *camunda.PipelineWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	w := camunda.NewWorker(client, taskType, wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond, handlerFunc, log)

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
