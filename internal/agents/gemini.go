package agents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

// StylistAgent produces the photo analysis and outfit recommendations. Both
// return a raw string that may or may not be fenced JSON; normalization
// happens downstream in one place.
type StylistAgent interface {
	AnalyzePhoto(ctx context.Context, req AnalysisRequest) (string, error)
	RecommendOutfits(ctx context.Context, req RecommendationRequest) (string, error)
}

type AnalysisRequest struct {
	PhotoURL        string
	Preferences     map[string]any
	Occasion        string
	Constraints     string
	TextDescription string
}

type RecommendationRequest struct {
	AnalysisResult string
	Preferences    map[string]any
	Occasion       string
	BudgetRange    string
}

type geminiAgent struct {
	log        *logger.Logger
	client     *genai.Client
	model      string
	httpClient *http.Client
}

func NewGeminiAgent(ctx context.Context, log *logger.Logger) (StylistAgent, error) {
	apiKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY")
	}
	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiAgent{
		log:        log.With("service", "GeminiAgent"),
		client:     client,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *geminiAgent) AnalyzePhoto(ctx context.Context, req AnalysisRequest) (string, error) {
	photo, err := a.fetchPhoto(ctx, req.PhotoURL)
	if err != nil {
		return "", fmt.Errorf("load photo for analysis: %w", err)
	}

	model := a.client.GenerativeModel(a.model)
	prompt := analysisPrompt(req)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData("jpeg", photo))
	if err != nil {
		return "", fmt.Errorf("gemini photo analysis: %w", err)
	}
	text := collectText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini photo analysis returned no content")
	}
	a.log.Debug("Photo analysis complete", "response_length", len(text))
	return text, nil
}

func (a *geminiAgent) RecommendOutfits(ctx context.Context, req RecommendationRequest) (string, error) {
	model := a.client.GenerativeModel(a.model)
	prompt := recommendationPrompt(req)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini outfit recommendation: %w", err)
	}
	text := collectText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini outfit recommendation returned no content")
	}
	a.log.Debug("Outfit recommendations complete", "response_length", len(text))
	return text, nil
}

func (a *geminiAgent) fetchPhoto(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo fetch failed: status=%d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
