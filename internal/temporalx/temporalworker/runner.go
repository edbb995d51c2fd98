package temporalworker

import (
	"fmt"

	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/envutil"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx/recommend"
)

// New builds the worker for the recommendation task queue with the pipeline
// workflow and its activities registered under their stable names.
func New(c temporalsdkclient.Client, acts *recommend.Activities, log *logger.Logger) worker.Worker {
	cfg := temporalx.LoadConfig()

	w := worker.New(c, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     envutil.Int("WORKER_CONCURRENCY", 10),
		MaxConcurrentWorkflowTaskExecutionSize: envutil.Int("WORKER_WORKFLOW_CONCURRENCY", 10),
	})

	w.RegisterWorkflowWithOptions(recommend.Workflow, workflow.RegisterOptions{Name: recommend.WorkflowName})
	w.RegisterActivityWithOptions(acts.AnalyzePhoto, activity.RegisterOptions{Name: recommend.ActivityAnalyzePhoto})
	w.RegisterActivityWithOptions(acts.GenerateRecommendations, activity.RegisterOptions{Name: recommend.ActivityGenerateRecommendations})
	w.RegisterActivityWithOptions(acts.GenerateVisualizations, activity.RegisterOptions{Name: recommend.ActivityGenerateVisualizations})
	w.RegisterActivityWithOptions(acts.SaveResults, activity.RegisterOptions{Name: recommend.ActivitySaveResults})

	log.Info("Temporal worker configured", "task_queue", cfg.TaskQueue, "namespace", cfg.Namespace)
	return w
}

// Run starts the worker and blocks until interrupted.
func Run(w worker.Worker) error {
	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("temporal worker: %w", err)
	}
	return nil
}
