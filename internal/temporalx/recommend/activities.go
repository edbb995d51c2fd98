package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"golang.org/x/sync/errgroup"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/agents"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/status"
)

const (
	stageAnalysis        = "analysis"
	stageRecommendations = "recommendations"
	stageVisualizations  = "visualizations"
	stageSave            = "save"

	defaultVizConcurrency = 2

	upscaleAttempts       = 3
	upscaleAttemptTimeout = 120 * time.Second

	heartbeatInterval = 30 * time.Second
)

// test override
var upscaleBaseDelay = 5 * time.Second

// Activities carries the dependencies for every step of the recommendation
// pipeline. One instance is registered per worker.
type Activities struct {
	Log     *logger.Logger
	Bucket  gcp.BucketService
	Stylist agents.StylistAgent
	Images  agents.ImageAgent
	Status  status.Service

	// VizConcurrency bounds concurrent image generations per session. Zero
	// means the default.
	VizConcurrency int
}

func NewActivities(log *logger.Logger, bucket gcp.BucketService, stylist agents.StylistAgent, images agents.ImageAgent, statusSvc status.Service, vizConcurrency int) *Activities {
	return &Activities{
		Log:            log.With("service", "RecommendActivities"),
		Bucket:         bucket,
		Stylist:        stylist,
		Images:         images,
		Status:         statusSvc,
		VizConcurrency: vizConcurrency,
	}
}

// AnalyzePhoto runs the stylist analysis over the uploaded photo.
func (a *Activities) AnalyzePhoto(ctx context.Context, in WorkflowInput) (string, error) {
	a.Status.Set(ctx, in.SessionID, status.Running, stageAnalysis, "")
	a.Log.Info("analyzing photo", "session_id", in.SessionID, "occasion", in.Occasion)

	out, err := a.Stylist.AnalyzePhoto(ctx, agents.AnalysisRequest{
		PhotoURL:        in.PhotoURL,
		Preferences:     preferenceMap(in.UserPreferences),
		Occasion:        in.Occasion,
		Constraints:     in.Constraints,
		TextDescription: in.TextDescription,
	})
	if err != nil {
		a.Status.Set(ctx, in.SessionID, status.Failed, stageAnalysis, err.Error())
		return "", fmt.Errorf("photo analysis: %w", err)
	}
	return out, nil
}

// GenerateRecommendations turns the analysis into outfit recommendations.
func (a *Activities) GenerateRecommendations(ctx context.Context, in RecommendInput) (string, error) {
	a.Status.Set(ctx, in.SessionID, status.Running, stageRecommendations, "")
	a.Log.Info("generating recommendations", "session_id", in.SessionID)

	out, err := a.Stylist.RecommendOutfits(ctx, agents.RecommendationRequest{
		AnalysisResult: in.AnalysisResult,
		Preferences:    preferenceMap(in.UserPreferences),
		Occasion:       in.Occasion,
		BudgetRange:    in.BudgetRange,
	})
	if err != nil {
		a.Status.Set(ctx, in.SessionID, status.Failed, stageRecommendations, err.Error())
		return "", fmt.Errorf("outfit recommendations: %w", err)
	}
	return out, nil
}

// GenerateVisualizations renders one image per recommended outfit. The batch
// never fails as a whole: malformed recommendations yield an empty list, and
// per-outfit failures become error entries at their original index.
func (a *Activities) GenerateVisualizations(ctx context.Context, in VisualizeInput) ([]fashion.VisualizationEntry, error) {
	a.Status.Set(ctx, in.SessionID, status.Running, stageVisualizations, "")

	recs, err := fashion.ParseRecommendations(in.Recommendations)
	if err != nil {
		a.Log.Warn("recommendations did not parse; skipping visualizations",
			"session_id", in.SessionID, "error", err)
		return []fashion.VisualizationEntry{}, nil
	}
	outfits := recs.OutfitRecommendations
	if len(outfits) == 0 {
		a.Log.Warn("no outfits to visualize", "session_id", in.SessionID)
		return []fashion.VisualizationEntry{}, nil
	}

	tier, params := fashion.TierParams(a.Log, in.Quality)
	a.Log.Info("generating visualizations",
		"session_id", in.SessionID, "outfits", len(outfits), "quality", tier)

	limit := a.VizConcurrency
	if limit <= 0 {
		limit = defaultVizConcurrency
	}

	// Heartbeat on a fixed cadence for the whole batch. A single outfit can
	// spend minutes in generation plus upscale retries before producing any
	// per-outfit progress, which must not trip the heartbeat timeout.
	if activity.IsActivity(ctx) {
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(heartbeatInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					return
				case <-ticker.C:
					activity.RecordHeartbeat(ctx, "visualizing")
				}
			}
		}()
	}

	entries := make([]fashion.VisualizationEntry, len(outfits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, outfit := range outfits {
		i, outfit := i, outfit
		g.Go(func() error {
			entries[i] = a.visualizeOutfit(gctx, in, i, outfit, params)
			if activity.IsActivity(ctx) {
				activity.RecordHeartbeat(ctx, fmt.Sprintf("outfit %d/%d", i+1, len(outfits)))
			}
			return nil
		})
	}
	// Workers return nil; the only group error is context cancellation.
	if err := g.Wait(); err != nil {
		return entries, err
	}
	return entries, nil
}

func (a *Activities) visualizeOutfit(ctx context.Context, in VisualizeInput, index int, outfit fashion.OutfitRecommendation, params fashion.RenderParams) fashion.VisualizationEntry {
	entry := fashion.VisualizationEntry{
		OutfitName: outfit.Name,
		OutfitData: outfit,
	}
	if entry.OutfitName == "" {
		entry.OutfitName = fmt.Sprintf("Outfit %d", index+1)
	}

	instruction := fashion.EditInstruction(outfit, "")
	generatedURL, err := a.Images.GenerateOutfitImage(ctx, in.PhotoURL, instruction, params)
	if err != nil {
		a.Log.Warn("image generation failed",
			"session_id", in.SessionID, "outfit", entry.OutfitName, "error", err)
		entry.Error = fmt.Sprintf("Visualization generation failed: %v", err)
		return entry
	}

	finalURL := generatedURL
	viz := &fashion.VisualizationImage{
		ReplicateURL:     generatedURL,
		UpscaleAttempted: params.UpscalingEnabled,
	}
	if params.UpscalingEnabled {
		upscaledURL, upErr := a.upscaleWithRetry(ctx, generatedURL)
		if upErr != nil {
			a.Log.Warn("upscaling failed; using base image",
				"session_id", in.SessionID, "outfit", entry.OutfitName, "error", upErr)
		} else {
			finalURL = upscaledURL
			viz.UpscaledURL = upscaledURL
			viz.UpscaleMethod = "real-esrgan"
			viz.UpscaleSuccessful = true
		}
	}

	data, err := agents.FetchImage(ctx, finalURL)
	if err != nil {
		a.Log.Warn("fetching generated image failed",
			"session_id", in.SessionID, "outfit", entry.OutfitName, "error", err)
		entry.Error = fmt.Sprintf("Visualization generation failed: fetch image: %v", err)
		return entry
	}
	viz.Width, viz.Height = agents.ProbeDimensions(data)

	key := fashion.VisualizationKey(in.SessionID, index)
	if err := a.Bucket.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		a.Log.Warn("storing generated image failed",
			"session_id", in.SessionID, "outfit", entry.OutfitName, "error", err)
		entry.Error = fmt.Sprintf("Visualization generation failed: store image: %v", err)
		return entry
	}
	viz.BlobKey = key
	viz.ImageURL = a.Bucket.PublicURL(key)

	entry.Visualization = viz
	return entry
}

// upscaleWithRetry attempts the upscale up to three times with a capped
// per-attempt deadline; callers fall back to the base image on exhaustion.
// The doubling delay precedes attempts two and three, so the only waits are
// 5s and 10s: three attempts total, not three retries after the first.
func (a *Activities) upscaleWithRetry(ctx context.Context, imageURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < upscaleAttempts; attempt++ {
		if attempt > 0 {
			delay := upscaleBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, upscaleAttemptTimeout)
		url, err := a.Images.UpscaleImage(attemptCtx, imageURL)
		cancel()
		if err == nil {
			return url, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("upscale after %d attempts: %w", upscaleAttempts, lastErr)
}

// SaveResults assembles and persists the final record; its blob is the
// completion signal clients poll for.
func (a *Activities) SaveResults(ctx context.Context, in SaveInput) (SaveResult, error) {
	a.Status.Set(ctx, in.Workflow.SessionID, status.Running, stageSave, "")

	record := fashion.ResultRecord{
		UserID:          in.Workflow.UserID,
		SessionID:       in.Workflow.SessionID,
		OriginalPhoto:   in.Workflow.PhotoURL,
		Analysis:        normalizeForRecord(a.Log, "analysis", in.AnalysisResult),
		Recommendations: normalizeForRecord(a.Log, "recommendations", in.Recommendations),
		Visualizations:  in.Visualizations,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		UserPreferences: in.Workflow.UserPreferences,
		Occasion:        in.Workflow.Occasion,
		Constraints:     in.Workflow.Constraints,
		Quality:         in.Workflow.Quality,
		TextDescription: in.Workflow.TextDescription,
	}
	if record.Visualizations == nil {
		record.Visualizations = []fashion.VisualizationEntry{}
	}

	body, err := json.Marshal(record)
	if err != nil {
		a.Status.Set(ctx, in.Workflow.SessionID, status.Failed, stageSave, err.Error())
		return SaveResult{}, fmt.Errorf("encode result record: %w", err)
	}

	key := fashion.ResultsKey(in.Workflow.UserID, in.Workflow.SessionID)
	if err := a.Bucket.Upload(ctx, key, bytes.NewReader(body)); err != nil {
		a.Status.Set(ctx, in.Workflow.SessionID, status.Failed, stageSave, err.Error())
		return SaveResult{}, fmt.Errorf("persist result record: %w", err)
	}

	a.Status.Set(ctx, in.Workflow.SessionID, status.Succeeded, "", "")
	a.Log.Info("results saved", "session_id", in.Workflow.SessionID, "blob_key", key)
	return SaveResult{ResultsURL: a.Bucket.PublicURL(key), BlobKey: key}, nil
}

// normalizeForRecord stores agent output as valid JSON: the decoded document
// when it parses, the whole string as a JSON string when it does not.
func normalizeForRecord(log *logger.Logger, what, raw string) json.RawMessage {
	if msg, err := fashion.NormalizeAgentJSON(what, raw); err == nil {
		return msg
	}
	log.Warn("agent output is not JSON; storing as string", "what", what)
	quoted, _ := fashion.QuoteJSONString(raw)
	return quoted
}

func preferenceMap(p fashion.UserPreferences) map[string]any {
	return map[string]any{
		"styleTypes": p.StyleTypes,
		"bodyType":   p.BodyType,
		"occasions":  p.Occasions,
		"colors":     p.Colors,
		"budget":     p.Budget,
	}
}
