package exporthiringreport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"hiresphere-backend/internal/activity"
	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

const TaskType = "export-hiring-report"

var ErrReportExportFailed = errors.New("REPORT_EXPORT_FAILED")

type Handler struct {
	timeout      time.Duration
	outputDir    string
	reports      *store.ReportStore
	feed         *activity.Feed
	logger       logger.Logger
	errorHandler *commonerr.ErrorHandler
}

func NewHandler(config *Config, reports *store.ReportStore, feed *activity.Feed, log logger.Logger) *Handler {
	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	return &Handler{
		timeout:      config.Timeout,
		outputDir:    outputDir,
		reports:      reports,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "REPORT_EXPORT_FAILED").Inc()
		h.failJob(client, job, "REPORT_EXPORT_FAILED", err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	stats, err := h.reports.JobPipeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load pipeline stats: %v", ErrReportExportFailed, err)
	}

	f, err := BuildWorkbook(stats)
	if err != nil {
		return nil, fmt.Errorf("%w: build workbook: %v", ErrReportExportFailed, err)
	}
	defer f.Close()

	path := h.outputPath(input.OutputPath)
	if err := f.SaveAs(path); err != nil {
		// direct save can fail on odd mounts; fall back to a buffered write
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return nil, fmt.Errorf("%w: save workbook: %v", ErrReportExportFailed, writeErr)
		}
		if fileErr := os.WriteFile(path, buf.Bytes(), 0o644); fileErr != nil {
			return nil, fmt.Errorf("%w: write workbook: %v", ErrReportExportFailed, fileErr)
		}
	}

	output := &Output{Path: path, JobCount: len(stats)}
	h.recordActivity(ctx, output)

	h.logger.Info("report exported", map[string]interface{}{
		"path":     output.Path,
		"jobCount": output.JobCount,
	})
	return output, nil
}

func (h *Handler) outputPath(requested string) string {
	if requested == "" {
		name := fmt.Sprintf("hiring-report-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		return filepath.Join(h.outputDir, name)
	}
	if !strings.HasSuffix(strings.ToLower(requested), ".xlsx") {
		requested += ".xlsx"
	}
	return filepath.Clean(requested)
}

func (h *Handler) recordActivity(ctx context.Context, output *Output) {
	if h.feed == nil {
		return
	}
	err := h.feed.Record(ctx, models.ActivityEntry{
		Agent:      "reporter",
		Action:     "report_exported",
		EntityType: "report",
		EntityID:   output.Path,
		Detail: map[string]interface{}{
			"jobCount": output.JobCount,
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
