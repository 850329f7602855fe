// internal/common/camunda/worker.go
package camunda

import (
	"simple-mortgage/internal/common/config"
	"simple-mortgage/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler handles one activated job and reports the outcome itself.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Workers tracks the job workers opened by Start.
type Workers struct {
	client  zbc.Client
	logger  logger.Logger
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	w.workers[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Started lists the task types with an open worker.
func (w *Workers) Started() []string {
	out := make([]string, 0, len(w.workers))
	for taskType := range w.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	for taskType, jw := range w.workers {
		w.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
	}
}
