package recommend

import (
	"context"
	"errors"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
)

const (
	testUser = "user_2abc"

	wfAnalysis        = `{"body_type":"athletic"}`
	wfRecommendations = `{"outfit_recommendations":[{"name":"Boardroom"}]}`
)

func workflowInput() WorkflowInput {
	return WorkflowInput{
		UserID:    testUser,
		SessionID: testSession,
		PhotoURL:  "https://storage.example.com/fashion-uploads/" + testSession + ".jpg",
		Occasion:  "work",
		Quality:   "high",
	}
}

// newWorkflowEnv wires stub activities under the production activity names so
// the workflow's orchestration runs against controlled step outcomes.
func newWorkflowEnv(t *testing.T, visualize func(ctx context.Context, in VisualizeInput) ([]fashion.VisualizationEntry, error), saved *SaveInput) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(Workflow)

	env.RegisterActivityWithOptions(func(ctx context.Context, in WorkflowInput) (string, error) {
		return wfAnalysis, nil
	}, activity.RegisterOptions{Name: ActivityAnalyzePhoto})
	env.RegisterActivityWithOptions(func(ctx context.Context, in RecommendInput) (string, error) {
		return wfRecommendations, nil
	}, activity.RegisterOptions{Name: ActivityGenerateRecommendations})
	env.RegisterActivityWithOptions(visualize,
		activity.RegisterOptions{Name: ActivityGenerateVisualizations})
	env.RegisterActivityWithOptions(func(ctx context.Context, in SaveInput) (SaveResult, error) {
		*saved = in
		return SaveResult{
			ResultsURL: "https://storage.example.com/" + fashion.ResultsKey(in.Workflow.UserID, in.Workflow.SessionID),
			BlobKey:    fashion.ResultsKey(in.Workflow.UserID, in.Workflow.SessionID),
		}, nil
	}, activity.RegisterOptions{Name: ActivitySaveResults})

	return env
}

func TestWorkflowPersistsRecordWhenVisualizationFails(t *testing.T) {
	var saved SaveInput
	env := newWorkflowEnv(t, func(ctx context.Context, in VisualizeInput) ([]fashion.VisualizationEntry, error) {
		return nil, errors.New("activity timed out")
	}, &saved)

	env.ExecuteWorkflow(Workflow, workflowInput())

	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow must survive a failed visualization step: %v", err)
	}
	if saved.Visualizations == nil || len(saved.Visualizations) != 0 {
		t.Fatalf("save input visualizations: want empty list got=%#v", saved.Visualizations)
	}
	if saved.AnalysisResult != wfAnalysis || saved.Recommendations != wfRecommendations {
		t.Fatalf("save input agent payloads: got=%+v", saved)
	}

	var result WorkflowResult
	if err := env.GetWorkflowResult(&result); err != nil {
		t.Fatalf("workflow result: %v", err)
	}
	if !result.Success || result.SessionID != testSession {
		t.Fatalf("workflow result: got=%+v", result)
	}
	if len(result.Visualizations) != 0 {
		t.Fatalf("degraded run must report no visualizations: got=%+v", result.Visualizations)
	}
}

func TestWorkflowCarriesVisualizationsToSave(t *testing.T) {
	entries := []fashion.VisualizationEntry{
		{OutfitName: "Boardroom", Visualization: &fashion.VisualizationImage{ImageURL: "https://cdn.example.com/outfit-1.jpg"}},
	}
	var saved SaveInput
	env := newWorkflowEnv(t, func(ctx context.Context, in VisualizeInput) ([]fashion.VisualizationEntry, error) {
		return entries, nil
	}, &saved)

	env.ExecuteWorkflow(Workflow, workflowInput())

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	if len(saved.Visualizations) != 1 || saved.Visualizations[0].OutfitName != "Boardroom" {
		t.Fatalf("save input visualizations: got=%+v", saved.Visualizations)
	}
	var result WorkflowResult
	if err := env.GetWorkflowResult(&result); err != nil {
		t.Fatalf("workflow result: %v", err)
	}
	if result.ResultsURL == "" || len(result.Visualizations) != 1 {
		t.Fatalf("workflow result: got=%+v", result)
	}
}

func TestWorkflowRejectsIncompleteInput(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(Workflow)

	in := workflowInput()
	in.PhotoURL = ""
	env.ExecuteWorkflow(Workflow, in)

	if err := env.GetWorkflowError(); err == nil {
		t.Fatalf("workflow must reject input without a photo url")
	}
}
