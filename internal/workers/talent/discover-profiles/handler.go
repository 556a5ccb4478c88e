package discoverprofiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"hiresphere-backend/internal/activity"
	"hiresphere-backend/internal/common/config"
	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/search"
	"hiresphere-backend/internal/store"
)

const TaskType = "discover-profiles"

var ErrDiscoveryFailed = errors.New("DISCOVERY_FAILED")

// ProfileScraper is satisfied by Scraper.
type ProfileScraper interface {
	Discover(ctx context.Context, platform, query, location string, max int, seen map[string]bool) ([]models.CandidateLead, error)
}

type Handler struct {
	timeout      time.Duration
	sourcing     config.SourcingConfig
	scraper      ProfileScraper
	leads        *store.LeadStore
	index        *search.LeadIndex
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(cfg *Config, sourcing config.SourcingConfig, scraper ProfileScraper, leads *store.LeadStore, index *search.LeadIndex, feed *activity.Feed, log logger.Logger) *Handler {
	return &Handler{
		timeout:      cfg.Timeout,
		sourcing:     sourcing,
		scraper:      scraper,
		leads:        leads,
		index:        index,
		feed:         feed,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errorHandler: commonerr.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "DISCOVERY_FAILED").Inc()
		h.failJob(client, job, "DISCOVERY_FAILED", err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	platforms := input.Platforms
	if len(platforms) == 0 {
		platforms = h.sourcing.Platforms
	}
	if len(platforms) == 0 {
		platforms = []string{"github"}
	}
	query := input.Query
	if query == "" {
		query = h.sourcing.Query
	}
	if query == "" {
		return nil, fmt.Errorf("%w: no search query configured", ErrDiscoveryFailed)
	}
	location := input.Location
	if location == "" {
		location = h.sourcing.Location
	}
	max := input.MaxProfiles
	if max <= 0 {
		max = h.sourcing.MaxProfiles
	}

	seen, err := h.knownProfileURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load existing leads: %v", ErrDiscoveryFailed, err)
	}

	output := &Output{Platforms: platforms}
	failures := 0
	for _, platform := range platforms {
		leads, err := h.scraper.Discover(ctx, platform, query, location, max, seen)
		if err != nil {
			failures++
			h.logger.Warn("platform discovery failed", map[string]interface{}{
				"platform": platform,
				"error":    err.Error(),
			})
			continue
		}
		output.ProfilesFound += len(leads)
		for i := range leads {
			if seen[leads[i].ProfileURL] {
				continue
			}
			if err := h.leads.Upsert(ctx, &leads[i]); err != nil {
				h.logger.Warn("lead upsert failed", map[string]interface{}{
					"profileUrl": leads[i].ProfileURL,
					"error":      err.Error(),
				})
				continue
			}
			seen[leads[i].ProfileURL] = true
			output.NewLeads++
			h.indexLead(ctx, &leads[i])
		}
	}
	if failures == len(platforms) {
		return nil, fmt.Errorf("%w: all %d platforms failed", ErrDiscoveryFailed, failures)
	}

	h.recordActivity(ctx, output)

	h.logger.Info("discovery complete", map[string]interface{}{
		"platforms":     platforms,
		"profilesFound": output.ProfilesFound,
		"newLeads":      output.NewLeads,
	})
	return output, nil
}

func (h *Handler) knownProfileURLs(ctx context.Context) (map[string]bool, error) {
	existing, err := h.leads.List(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, lead := range existing {
		seen[lead.ProfileURL] = true
	}
	return seen, nil
}

// indexLead is best-effort; Postgres is the source of truth
func (h *Handler) indexLead(ctx context.Context, lead *models.CandidateLead) {
	if h.index == nil {
		return
	}
	if err := h.index.Index(ctx, lead); err != nil {
		h.logger.Warn("lead index failed", map[string]interface{}{
			"leadId": lead.ID,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) recordActivity(ctx context.Context, output *Output) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "talent-scout",
		Action:     "profiles_discovered",
		EntityType: "lead",
		EntityID:   "",
		Detail: map[string]interface{}{
			"platforms":     output.Platforms,
			"profilesFound": output.ProfilesFound,
			"newLeads":      output.NewLeads,
		},
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("activity record failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}

// failJob routes the failure through the shared error handler, which
// grants retryable codes their remaining retries before raising a BPMN
// error on the process instance.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	code := commonerr.ErrorCode(errorCode)
	h.errorHandler.HandleJobError(context.Background(), client, job, &commonerr.StandardError{
		Code:      code,
		Message:   errorMessage,
		Retryable: commonerr.IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
