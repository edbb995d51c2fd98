package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/apierr"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

const (
	favoritesLockTTL     = 10 * time.Second
	favoritesLockRetries = 20
	favoritesLockDelay   = 100 * time.Millisecond
)

// FavoritesService manages the per-user favorites blob. A favorite is unique
// on (sessionID, outfitIndex). Writes are read-modify-write over a single
// blob, serialized per user with a Redis lock when Redis is available.
type FavoritesService interface {
	Get(ctx context.Context, userID string) (*fashion.FavoritesRecord, *apierr.Error)
	Add(ctx context.Context, userID, sessionID string, outfitIndex int) (*fashion.FavoriteOutfit, *apierr.Error)
	Remove(ctx context.Context, userID, sessionID string, outfitIndex int) *apierr.Error
	Check(ctx context.Context, userID, sessionID string, outfitIndex int) (bool, *apierr.Error)
	PruneSession(ctx context.Context, userID, sessionID string) error
}

type favoritesService struct {
	log    *logger.Logger
	bucket gcp.BucketService
	rdb    *goredis.Client
}

func NewFavoritesService(log *logger.Logger, bucket gcp.BucketService, rdb *goredis.Client) FavoritesService {
	return &favoritesService{
		log:    log.With("service", "FavoritesService"),
		bucket: bucket,
		rdb:    rdb,
	}
}

func favoritesLockKey(userID string) string {
	return "fashion:favlock:" + userID
}

// lock serializes favorites writes for one user. Without Redis it is a no-op;
// a single API instance then relies on the blob write being last-writer-wins.
func (s *favoritesService) lock(ctx context.Context, userID string) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}
	key := favoritesLockKey(userID)
	for i := 0; i < favoritesLockRetries; i++ {
		ok, err := s.rdb.SetNX(ctx, key, "1", favoritesLockTTL).Result()
		if err != nil {
			s.log.Warn("favorites lock unavailable; proceeding unlocked", "user_id", userID, "error", err)
			return func() {}, nil
		}
		if ok {
			return func() {
				if err := s.rdb.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
					s.log.Warn("favorites lock release failed", "user_id", userID, "error", err)
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(favoritesLockDelay):
		}
	}
	return nil, fmt.Errorf("favorites lock for user contended past %d attempts", favoritesLockRetries)
}

func (s *favoritesService) load(ctx context.Context, userID string) (*fashion.FavoritesRecord, error) {
	rc, err := s.bucket.Download(ctx, fashion.FavoritesKey(userID))
	if err != nil {
		if errors.Is(err, gcp.ErrObjectNotFound) {
			return &fashion.FavoritesRecord{UserID: userID, Favorites: []fashion.FavoriteOutfit{}}, nil
		}
		return nil, fmt.Errorf("fetch favorites: %w", err)
	}
	defer rc.Close()

	var record fashion.FavoritesRecord
	if err := json.NewDecoder(rc).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if record.Favorites == nil {
		record.Favorites = []fashion.FavoriteOutfit{}
	}
	return &record, nil
}

func (s *favoritesService) store(ctx context.Context, userID string, record *fashion.FavoritesRecord) error {
	record.UserID = userID
	record.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.bucket.Upload(ctx, fashion.FavoritesKey(userID), bytes.NewReader(body)); err != nil {
		return fmt.Errorf("persist favorites: %w", err)
	}
	return nil
}

func (s *favoritesService) Get(ctx context.Context, userID string) (*fashion.FavoritesRecord, *apierr.Error) {
	record, err := s.load(ctx, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "FAVORITES_FETCH_FAILED", err)
	}
	return record, nil
}

func (s *favoritesService) Add(ctx context.Context, userID, sessionID string, outfitIndex int) (*fashion.FavoriteOutfit, *apierr.Error) {
	if !fashion.SessionOwnedBy(sessionID, userID) {
		return nil, notFound(sessionID)
	}
	if outfitIndex < 0 {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_OUTFIT_INDEX",
			fmt.Errorf("outfit index %d out of range", outfitIndex))
	}

	favorite, apiErr := s.buildFavorite(ctx, userID, sessionID, outfitIndex)
	if apiErr != nil {
		return nil, apiErr
	}

	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, apierr.New(http.StatusConflict, "FAVORITES_BUSY", err)
	}
	defer unlock()

	record, err := s.load(ctx, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "FAVORITES_FETCH_FAILED", err)
	}
	for i := range record.Favorites {
		f := &record.Favorites[i]
		if f.SessionID == sessionID && f.OutfitIndex == outfitIndex {
			// Adding an existing favorite is a no-op; the stored entry wins.
			return f, nil
		}
	}
	record.Favorites = append(record.Favorites, *favorite)
	if err := s.store(ctx, userID, record); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "FAVORITES_SAVE_FAILED", err)
	}
	return favorite, nil
}

// buildFavorite resolves the outfit and its visualization from the session's
// result record.
func (s *favoritesService) buildFavorite(ctx context.Context, userID, sessionID string, outfitIndex int) (*fashion.FavoriteOutfit, *apierr.Error) {
	rc, err := s.bucket.Download(ctx, fashion.ResultsKey(userID, sessionID))
	if err != nil {
		if errors.Is(err, gcp.ErrObjectNotFound) {
			return nil, notFound(sessionID)
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

	var recs fashion.Recommendations
	if err := json.Unmarshal(record.Recommendations, &recs); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "RESULTS_CORRUPT",
			fmt.Errorf("decode recommendations for session %s: %w", sessionID, err))
	}
	if outfitIndex >= len(recs.OutfitRecommendations) {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_OUTFIT_INDEX",
			fmt.Errorf("outfit index %d out of range for %d outfits", outfitIndex, len(recs.OutfitRecommendations)))
	}
	outfit := recs.OutfitRecommendations[outfitIndex]

	return &fashion.FavoriteOutfit{
		SessionID:     sessionID,
		OutfitIndex:   outfitIndex,
		OutfitName:    outfit.Name,
		OutfitData:    outfit,
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
		OriginalPhoto: record.OriginalPhoto,
		Occasion:      record.Occasion,
		Visualization: matchVisualization(record.Visualizations, outfit.Name, outfitIndex),
	}, nil
}

// matchVisualization finds the image for an outfit by name, falling back to
// the positional "Outfit {n}" label used when recommendations are unnamed.
func matchVisualization(entries []fashion.VisualizationEntry, name string, index int) *fashion.VisualizationImage {
	fallback := fmt.Sprintf("Outfit %d", index+1)
	for _, e := range entries {
		if e.Failed() || e.Visualization == nil {
			continue
		}
		if (name != "" && e.OutfitName == name) || e.OutfitName == fallback {
			return e.Visualization
		}
	}
	return nil
}

func (s *favoritesService) Remove(ctx context.Context, userID, sessionID string, outfitIndex int) *apierr.Error {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return apierr.New(http.StatusConflict, "FAVORITES_BUSY", err)
	}
	defer unlock()

	record, err := s.load(ctx, userID)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "FAVORITES_FETCH_FAILED", err)
	}

	// Removing an absent favorite succeeds; updatedAt refreshes either way.
	kept := record.Favorites[:0]
	for _, f := range record.Favorites {
		if f.SessionID == sessionID && f.OutfitIndex == outfitIndex {
			continue
		}
		kept = append(kept, f)
	}
	record.Favorites = kept
	if err := s.store(ctx, userID, record); err != nil {
		return apierr.New(http.StatusInternalServerError, "FAVORITES_SAVE_FAILED", err)
	}
	return nil
}

func (s *favoritesService) Check(ctx context.Context, userID, sessionID string, outfitIndex int) (bool, *apierr.Error) {
	record, err := s.load(ctx, userID)
	if err != nil {
		return false, apierr.New(http.StatusInternalServerError, "FAVORITES_FETCH_FAILED", err)
	}
	for _, f := range record.Favorites {
		if f.SessionID == sessionID && f.OutfitIndex == outfitIndex {
			return true, nil
		}
	}
	return false, nil
}

// PruneSession drops every favorite sourced from sessionID. A no-op record is
// not rewritten.
func (s *favoritesService) PruneSession(ctx context.Context, userID, sessionID string) error {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	record, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	kept := record.Favorites[:0]
	for _, f := range record.Favorites {
		if f.SessionID != sessionID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(record.Favorites) {
		return nil
	}
	record.Favorites = kept
	return s.store(ctx, userID, record)
}
