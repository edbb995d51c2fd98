package fashion

import "encoding/json"

// UserPreferences is the style profile submitted with every analysis request.
type UserPreferences struct {
	StyleTypes []string `json:"styleTypes"`
	BodyType   string   `json:"bodyType"`
	Occasions  []string `json:"occasions"`
	Colors     []string `json:"colors"`
	Budget     string   `json:"budget"`
}

// OutfitItem is one garment slot inside a recommendation.
type OutfitItem struct {
	Item         string `json:"item"`
	Color        string `json:"color"`
	StyleDetails string `json:"style_details,omitempty"`
	Why          string `json:"why,omitempty"`
}

type OutfitItems struct {
	Top         OutfitItem   `json:"top"`
	Bottom      OutfitItem   `json:"bottom"`
	Shoes       OutfitItem   `json:"shoes"`
	Outerwear   *OutfitItem  `json:"outerwear,omitempty"`
	Accessories []OutfitItem `json:"accessories,omitempty"`
}

type OutfitRecommendation struct {
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	StyleCategory  string      `json:"style_category,omitempty"`
	Items          OutfitItems `json:"items"`
	StylingTips    []string    `json:"styling_tips,omitempty"`
	BudgetEstimate string      `json:"budget_estimate,omitempty"`
	OccasionFit    string      `json:"occasion_appropriateness,omitempty"`
}

// Recommendations is the parsed shape of the recommendation agent output. Keys
// beyond outfit_recommendations (styling principles, seasonal notes) ride
// along untouched in the raw record.
type Recommendations struct {
	OutfitRecommendations []OutfitRecommendation `json:"outfit_recommendations"`
}

// VisualizationImage is the provenance record for one generated outfit image.
type VisualizationImage struct {
	ImageURL          string `json:"image_url"`
	ReplicateURL      string `json:"replicate_url,omitempty"`
	UpscaledURL       string `json:"upscaled_url,omitempty"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	BlobKey           string `json:"blob_key"`
	UpscaleMethod     string `json:"upscale_method,omitempty"`
	UpscaleAttempted  bool   `json:"upscale_attempted"`
	UpscaleSuccessful bool   `json:"upscale_successful"`
}

// VisualizationEntry is a two-variant result: either Visualization is set
// (success) or Error is set (failure). There is no pending variant; an entry
// exists only once its outfit finished processing.
type VisualizationEntry struct {
	OutfitName    string               `json:"outfit_name"`
	Visualization *VisualizationImage  `json:"visualization,omitempty"`
	Error         string               `json:"error,omitempty"`
	OutfitData    OutfitRecommendation `json:"outfit_data"`
}

func (e VisualizationEntry) Failed() bool { return e.Error != "" }

// ResultRecord is the final persisted document for a session. Its presence at
// the results key is the completion signal clients poll for. Analysis and
// recommendations stay as raw JSON so agent output shapes pass through
// unmodified.
type ResultRecord struct {
	UserID          string               `json:"userId"`
	SessionID       string               `json:"sessionId"`
	OriginalPhoto   string               `json:"originalPhoto"`
	Analysis        json.RawMessage      `json:"analysis"`
	Recommendations json.RawMessage      `json:"recommendations"`
	Visualizations  []VisualizationEntry `json:"visualizations"`
	Timestamp       string               `json:"timestamp"`
	UserPreferences UserPreferences      `json:"userPreferences"`
	Occasion        string               `json:"occasion"`
	Constraints     string               `json:"constraints,omitempty"`
	Quality         string               `json:"quality,omitempty"`
	TextDescription string               `json:"textDescription,omitempty"`
}

// FavoriteOutfit pins one outfit from a past session. Uniqueness is on
// (SessionID, OutfitIndex).
type FavoriteOutfit struct {
	SessionID     string               `json:"sessionId"`
	OutfitIndex   int                  `json:"outfitIndex"`
	OutfitName    string               `json:"outfitName"`
	OutfitData    OutfitRecommendation `json:"outfitData"`
	SavedAt       string               `json:"savedAt"`
	OriginalPhoto string               `json:"originalPhoto"`
	Occasion      string               `json:"occasion"`
	Visualization *VisualizationImage  `json:"visualization,omitempty"`
}

type FavoritesRecord struct {
	UserID    string           `json:"userId"`
	Favorites []FavoriteOutfit `json:"favorites"`
	UpdatedAt string           `json:"updatedAt"`
}

// HistoryEntry is the summary projection served by the history endpoint.
type HistoryEntry struct {
	SessionID         string                `json:"sessionId"`
	Timestamp         string                `json:"timestamp"`
	Occasion          string                `json:"occasion"`
	AnalysisData      HistoryAnalysis       `json:"analysisData"`
	OriginalPhoto     string                `json:"originalPhoto"`
	PreviewOutfit     *OutfitRecommendation `json:"previewOutfit"`
	HasVisualizations bool                  `json:"hasVisualizations"`
}

type HistoryAnalysis struct {
	BodyType       string   `json:"bodyType,omitempty"`
	DominantColors []string `json:"dominantColors,omitempty"`
	OutfitCount    int      `json:"outfitCount"`
}
