package recommend

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
)

// Workflow runs the four-step recommendation pipeline. Steps 1, 2 and 4 are
// fail-fast: without an analysis, a recommendation list, or a persisted record
// there is nothing for the client to poll. Step 3 is fail-soft inside its
// activity; it always resolves, possibly with error entries or an empty list.
func Workflow(ctx workflow.Context, in WorkflowInput) (*WorkflowResult, error) {
	if strings.TrimSpace(in.UserID) == "" ||
		strings.TrimSpace(in.SessionID) == "" ||
		strings.TrimSpace(in.PhotoURL) == "" ||
		strings.TrimSpace(in.Occasion) == "" {
		return nil, fmt.Errorf("recommend: missing required workflow input")
	}

	agentCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	var analysis string
	if err := workflow.ExecuteActivity(agentCtx, ActivityAnalyzePhoto, in).Get(ctx, &analysis); err != nil {
		return nil, err
	}
	if strings.TrimSpace(analysis) == "" {
		return nil, fmt.Errorf("recommend: analysis agent returned no content")
	}

	var recommendations string
	recIn := RecommendInput{
		SessionID:       in.SessionID,
		AnalysisResult:  analysis,
		UserPreferences: in.UserPreferences,
		Occasion:        in.Occasion,
		BudgetRange:     in.UserPreferences.Budget,
	}
	if err := workflow.ExecuteActivity(agentCtx, ActivityGenerateRecommendations, recIn).Get(ctx, &recommendations); err != nil {
		return nil, err
	}
	if strings.TrimSpace(recommendations) == "" {
		return nil, fmt.Errorf("recommend: recommendation agent returned no content")
	}

	// The visualization batch runs long (one generation plus an optional
	// upscale per outfit) and handles all per-outfit failures internally, so
	// no engine-level retry of the whole batch.
	vizCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 45 * time.Minute,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	var visualizations []fashion.VisualizationEntry
	vizIn := VisualizeInput{
		SessionID:       in.SessionID,
		PhotoURL:        in.PhotoURL,
		Recommendations: recommendations,
		Quality:         in.Quality,
	}
	if err := workflow.ExecuteActivity(vizCtx, ActivityGenerateVisualizations, vizIn).Get(ctx, &visualizations); err != nil {
		// The record is still written when the whole batch fails.
		workflow.GetLogger(ctx).Warn("visualization step failed; continuing without visualizations",
			"session_id", in.SessionID, "error", err)
		visualizations = []fashion.VisualizationEntry{}
	}

	saveCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    5,
		},
	})
	var saved SaveResult
	saveIn := SaveInput{
		Workflow:        in,
		AnalysisResult:  analysis,
		Recommendations: recommendations,
		Visualizations:  visualizations,
	}
	if err := workflow.ExecuteActivity(saveCtx, ActivitySaveResults, saveIn).Get(ctx, &saved); err != nil {
		return nil, err
	}

	return &WorkflowResult{
		Success:         true,
		SessionID:       in.SessionID,
		ResultsURL:      saved.ResultsURL,
		Analysis:        rawOrQuoted(analysis),
		Recommendations: rawOrQuoted(recommendations),
		Visualizations:  visualizations,
		Message:         fmt.Sprintf("Fashion recommendations and visualizations generated for session %s", in.SessionID),
	}, nil
}

func rawOrQuoted(s string) []byte {
	if raw, err := fashion.NormalizeAgentJSON("agent output", s); err == nil {
		return raw
	}
	quoted, _ := fashion.QuoteJSONString(s)
	return quoted
}
