// cmd/tools/worker-generator/main.go
//
// Scaffolds a new Zeebe worker package in the layout the rest of the
// codebase uses: config.go, models.go, handler.go and handler_test.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name        string
	PackageName string
	TaskType    string
	Category    string
	ErrorCode   string
	ErrorVar    string
	Timeout     string
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// errorCodeFromTask turns "send-offer-letter" into "SEND_OFFER_LETTER_FAILED"
func errorCodeFromTask(taskType string) string {
	return strings.ToUpper(strings.ReplaceAll(taskType, "-", "_")) + "_FAILED"
}

// errorVarFromTask turns "send-offer-letter" into "ErrSendOfferLetterFailed"
func errorVarFromTask(taskType string) string {
	var b strings.Builder
	b.WriteString("Err")
	for _, part := range strings.Split(taskType, "-") {
		b.WriteString(upperFirst(part))
	}
	b.WriteString("Failed")
	return b.String()
}

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

// Input carries the process variables consumed by the {{ .TaskType }} task.
type Input struct {
	// TODO({{ .TaskType }}): add input fields for the process variables
}

// Output carries the variables written back to the process.
type Output struct {
	// TODO({{ .TaskType }}): add output fields
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
)

const TaskType = "{{ .TaskType }}"

var {{ .ErrorVar }} = errors.New("{{ .ErrorCode }}")

type Handler struct {
	timeout time.Duration
	logger  logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		timeout: config.Timeout,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "{{ .ErrorCode }}").Inc()
		h.failJob(client, job, "{{ .ErrorCode }}", err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO({{ .TaskType }}): implement the task
	return &Output{}, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

// Execute exposes the task body for tests and scheduled runs.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/logger"
)

func TestExecute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
`

func main() {
	taskType := flag.String("task", "", "Task type, e.g. send-offer-letter")
	category := flag.String("category", "pipeline", "Worker category directory (pipeline, assessment, offer, talent, reporting)")
	name := flag.String("name", "", "Display name, defaults to the task type")
	timeout := flag.String("timeout", "30 * time.Second", "Default handler timeout expression")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	flag.Parse()

	if *taskType == "" {
		fmt.Println("Usage: worker-generator --task <task-type> [--category <dir>] [--name <display name>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --task send-offer-letter --category offer")
		os.Exit(1)
	}

	displayName := *name
	if displayName == "" {
		displayName = *taskType
	}

	data := WorkerData{
		Name:        displayName,
		PackageName: strings.ReplaceAll(*taskType, "-", ""),
		TaskType:    *taskType,
		Category:    *category,
		ErrorCode:   errorCodeFromTask(*taskType),
		ErrorVar:    errorVarFromTask(*taskType),
		Timeout:     *timeout,
	}

	workerDir := filepath.Join(*outputDir, data.Category, *taskType)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		if _, err := os.Stat(filePath); err == nil {
			fmt.Printf("Skipping %s: already exists\n", filePath)
			continue
		}

		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Fill in Input/Output in models.go\n")
	fmt.Printf("  2. Implement execute in handler.go\n")
	fmt.Printf("  3. Register the worker in cmd/pipeline-worker/main.go\n")
	fmt.Printf("  4. Add the task to the workers block in configs/config.yaml\n")
}
