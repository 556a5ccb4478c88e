package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandlerFunc processes one Zeebe job.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// PipelineWorker wraps one open Zeebe job worker so the binary can track
// and stop it during shutdown.
type PipelineWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandlerFunc,
	logger *zap.Logger,
) *PipelineWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			handler(client, job)
		}).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	return &PipelineWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

func (w *PipelineWorker) TaskType() string {
	return w.taskType
}

// Stop closes the underlying job worker.
func (w *PipelineWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
