package recommend

import (
	"encoding/json"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
)

const (
	WorkflowName = "fashion_recommend"

	ActivityAnalyzePhoto            = "fashion_analyze_photo"
	ActivityGenerateRecommendations = "fashion_generate_recommendations"
	ActivityGenerateVisualizations  = "fashion_generate_visualizations"
	ActivitySaveResults             = "fashion_save_results"
)

// WorkflowInput is the event payload that starts one recommendation run.
type WorkflowInput struct {
	UserID          string                  `json:"userId"`
	SessionID       string                  `json:"sessionId"`
	PhotoURL        string                  `json:"photoUrl"`
	UserPreferences fashion.UserPreferences `json:"userPreferences"`
	Occasion        string                  `json:"occasion"`
	Quality         string                  `json:"quality,omitempty"`
	Constraints     string                  `json:"constraints,omitempty"`
	TextDescription string                  `json:"textDescription,omitempty"`
}

type RecommendInput struct {
	SessionID       string                  `json:"sessionId"`
	AnalysisResult  string                  `json:"analysisResult"`
	UserPreferences fashion.UserPreferences `json:"userPreferences"`
	Occasion        string                  `json:"occasion"`
	BudgetRange     string                  `json:"budgetRange"`
}

type VisualizeInput struct {
	SessionID       string `json:"sessionId"`
	PhotoURL        string `json:"photoUrl"`
	Recommendations string `json:"recommendations"`
	Quality         string `json:"quality,omitempty"`
}

type SaveInput struct {
	Workflow        WorkflowInput                `json:"workflow"`
	AnalysisResult  string                       `json:"analysisResult"`
	Recommendations string                       `json:"recommendations"`
	Visualizations  []fashion.VisualizationEntry `json:"visualizations"`
}

type SaveResult struct {
	ResultsURL string `json:"resultsUrl"`
	BlobKey    string `json:"blobKey"`
}

// WorkflowResult mirrors the shape returned to workflow queries and logs; the
// client-facing contract is the persisted result record, not this value.
type WorkflowResult struct {
	Success         bool                         `json:"success"`
	SessionID       string                       `json:"sessionId"`
	ResultsURL      string                       `json:"resultsUrl"`
	Analysis        json.RawMessage              `json:"analysis"`
	Recommendations json.RawMessage              `json:"recommendations"`
	Visualizations  []fashion.VisualizationEntry `json:"visualizations"`
	Message         string                       `json:"message"`
}
