package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/apierr"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/status"
)

// SessionStatus is the polled view of one session: the result blob is the
// completion signal, with the workflow tracker filling in progress detail.
type SessionStatus struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Stage     string `json:"stage,omitempty"`
	Error     string `json:"error,omitempty"`
}

type DeleteSummary struct {
	SessionID    string `json:"sessionId"`
	DeletedBlobs int    `json:"deletedBlobs"`
}

// ResultsService reads, lists, and deletes per-session result state. All
// lookups enforce session ownership; a session that exists but belongs to
// another user is indistinguishable from one that does not exist.
type ResultsService interface {
	Get(ctx context.Context, userID, sessionID string) (*fashion.ResultRecord, *apierr.Error)
	Status(ctx context.Context, userID, sessionID string) (*SessionStatus, *apierr.Error)
	History(ctx context.Context, userID string) ([]fashion.HistoryEntry, *apierr.Error)
	DeleteSession(ctx context.Context, userID, sessionID string) (*DeleteSummary, *apierr.Error)
}

// ErrResultPending marks a session whose workflow has not persisted its record
// yet; handlers translate it to a "processing" response rather than an error.
var ErrResultPending = errors.New("result not ready")

type resultsService struct {
	log       *logger.Logger
	bucket    gcp.BucketService
	status    status.Service
	favorites FavoritesService
}

func NewResultsService(log *logger.Logger, bucket gcp.BucketService, statusSvc status.Service, favorites FavoritesService) ResultsService {
	return &resultsService{
		log:       log.With("service", "ResultsService"),
		bucket:    bucket,
		status:    statusSvc,
		favorites: favorites,
	}
}

func notFound(sessionID string) *apierr.Error {
	return apierr.New(http.StatusNotFound, "SESSION_NOT_FOUND", fmt.Errorf("session %s not found", sessionID))
}

func (s *resultsService) Get(ctx context.Context, userID, sessionID string) (*fashion.ResultRecord, *apierr.Error) {
	if !fashion.SessionOwnedBy(sessionID, userID) {
		return nil, notFound(sessionID)
	}

	rc, err := s.bucket.Download(ctx, fashion.ResultsKey(userID, sessionID))
	if err != nil {
		if errors.Is(err, gcp.ErrObjectNotFound) {
			return nil, apierr.New(http.StatusOK, "PROCESSING", ErrResultPending)
		}
		return nil, apierr.New(http.StatusInternalServerError, "RESULTS_FETCH_FAILED",
			fmt.Errorf("fetch results: %w", err))
	}
	defer rc.Close()

	var record fashion.ResultRecord
	if err := json.NewDecoder(rc).Decode(&record); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "RESULTS_CORRUPT",
			fmt.Errorf("decode results for session %s: %w", sessionID, err))
	}
	return &record, nil
}

func (s *resultsService) Status(ctx context.Context, userID, sessionID string) (*SessionStatus, *apierr.Error) {
	if !fashion.SessionOwnedBy(sessionID, userID) {
		return nil, notFound(sessionID)
	}

	exists, err := s.bucket.Exists(ctx, fashion.ResultsKey(userID, sessionID))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "STATUS_CHECK_FAILED",
			fmt.Errorf("check results blob: %w", err))
	}
	if exists {
		return &SessionStatus{SessionID: sessionID, Status: status.Succeeded}, nil
	}

	st, err := s.status.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn("status read failed; reporting pending", "session_id", sessionID, "error", err)
	}
	if st == nil {
		return &SessionStatus{SessionID: sessionID, Status: status.Pending}, nil
	}
	return &SessionStatus{
		SessionID: sessionID,
		Status:    st.State,
		Stage:     st.Stage,
		Error:     st.Error,
	}, nil
}

func (s *resultsService) History(ctx context.Context, userID string) ([]fashion.HistoryEntry, *apierr.Error) {
	keys, err := s.bucket.ListKeys(ctx, fashion.UserResultsPrefix(userID))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "HISTORY_LIST_FAILED",
			fmt.Errorf("list history: %w", err))
	}

	entries := make([]fashion.HistoryEntry, 0, len(keys))
	for _, key := range keys {
		record, err := s.fetchRecord(ctx, key)
		if err != nil {
			// A single unreadable record never hides the rest of the history.
			s.log.Warn("skipping unreadable history record", "key", key, "error", err)
			continue
		}
		entries = append(entries, historyEntry(record))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

func (s *resultsService) fetchRecord(ctx context.Context, key string) (*fashion.ResultRecord, error) {
	rc, err := s.bucket.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var record fashion.ResultRecord
	if err := json.NewDecoder(rc).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func historyEntry(record *fashion.ResultRecord) fashion.HistoryEntry {
	entry := fashion.HistoryEntry{
		SessionID:     record.SessionID,
		Timestamp:     record.Timestamp,
		Occasion:      record.Occasion,
		OriginalPhoto: record.OriginalPhoto,
	}
	entry.AnalysisData.BodyType = record.UserPreferences.BodyType

	var analysis struct {
		ColorAnalysis struct {
			DominantColors []string `json:"dominant_colors"`
		} `json:"color_analysis"`
	}
	if len(record.Analysis) > 0 {
		if err := json.Unmarshal(record.Analysis, &analysis); err == nil {
			entry.AnalysisData.DominantColors = analysis.ColorAnalysis.DominantColors
		}
	}

	var recs fashion.Recommendations
	if len(record.Recommendations) > 0 {
		if err := json.Unmarshal(record.Recommendations, &recs); err == nil {
			entry.AnalysisData.OutfitCount = len(recs.OutfitRecommendations)
			if len(recs.OutfitRecommendations) > 0 {
				first := recs.OutfitRecommendations[0]
				entry.PreviewOutfit = &first
			}
		}
	}

	for _, viz := range record.Visualizations {
		if !viz.Failed() && viz.Visualization != nil {
			entry.HasVisualizations = true
			break
		}
	}
	return entry
}

// DeleteSession removes every blob belonging to the session across all key
// prefixes and prunes its favorites. Individual delete failures are logged,
// not fatal; the summary counts what was actually removed.
func (s *resultsService) DeleteSession(ctx context.Context, userID, sessionID string) (*DeleteSummary, *apierr.Error) {
	if !fashion.SessionOwnedBy(sessionID, userID) {
		return nil, notFound(sessionID)
	}

	keys, err := s.bucket.ListKeys(ctx, fashion.SessionScanPrefix)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "DELETE_LIST_FAILED",
			fmt.Errorf("list session blobs: %w", err))
	}

	deleted := 0
	for _, key := range keys {
		if !strings.Contains(key, sessionID) {
			continue
		}
		if err := s.bucket.Delete(ctx, key); err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
			s.log.Warn("blob delete failed", "key", key, "error", err)
			continue
		}
		deleted++
	}

	if s.favorites != nil {
		if err := s.favorites.PruneSession(ctx, userID, sessionID); err != nil {
			s.log.Warn("favorites prune failed", "session_id", sessionID, "error", err)
		}
	}

	s.log.Info("session deleted", "user_id", userID, "session_id", sessionID, "deleted_blobs", deleted)
	return &DeleteSummary{SessionID: sessionID, DeletedBlobs: deleted}, nil
}

// DownloadFilename derives the attachment filename from the last path segment
// of an image URL, defaulting when the path carries none.
func DownloadFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "outfit.jpg"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "outfit.jpg"
	}
	return name
}
