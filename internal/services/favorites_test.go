package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
)

const (
	favUser    = "user_2abc"
	favSession = "user_2abc-1717171717171"
)

func seedResultRecord(t *testing.T, bucket *fakeBucket) {
	t.Helper()
	recs := fashion.Recommendations{
		OutfitRecommendations: []fashion.OutfitRecommendation{
			{Name: "Smart Casual", Items: fashion.OutfitItems{Top: fashion.OutfitItem{Item: "oxford shirt", Color: "white"}}},
			{Name: "Weekend Layers"},
		},
	}
	rawRecs, err := json.Marshal(recs)
	if err != nil {
		t.Fatalf("marshal recommendations: %v", err)
	}
	record := fashion.ResultRecord{
		UserID:          favUser,
		SessionID:       favSession,
		OriginalPhoto:   "https://storage.example.com/fashion-uploads/" + favSession + ".jpg",
		Analysis:        json.RawMessage(`{"body_type":"athletic"}`),
		Recommendations: rawRecs,
		Visualizations: []fashion.VisualizationEntry{
			{OutfitName: "Smart Casual", Visualization: &fashion.VisualizationImage{ImageURL: "https://cdn.example.com/outfit-1.jpg", BlobKey: fashion.VisualizationKey(favSession, 0)}},
			{OutfitName: "Weekend Layers", Error: "Visualization generation failed: upstream timeout"},
		},
		Timestamp: "2026-08-30T10:00:00Z",
		Occasion:  "work",
	}
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	bucket.put(t, fashion.ResultsKey(favUser, favSession), raw)
}

func TestFavoritesAddAndCheck(t *testing.T) {
	bucket := newFakeBucket()
	seedResultRecord(t, bucket)
	svc := NewFavoritesService(testLogger(t), bucket, nil)
	ctx := context.Background()

	fav, apiErr := svc.Add(ctx, favUser, favSession, 0)
	if apiErr != nil {
		t.Fatalf("Add: %v", apiErr)
	}
	if fav.OutfitName != "Smart Casual" {
		t.Fatalf("favorite name: got=%q", fav.OutfitName)
	}
	if fav.Visualization == nil || fav.Visualization.ImageURL != "https://cdn.example.com/outfit-1.jpg" {
		t.Fatalf("favorite visualization: got=%+v", fav.Visualization)
	}
	if fav.Occasion != "work" {
		t.Fatalf("favorite occasion: got=%q", fav.Occasion)
	}

	ok, apiErr := svc.Check(ctx, favUser, favSession, 0)
	if apiErr != nil {
		t.Fatalf("Check: %v", apiErr)
	}
	if !ok {
		t.Fatalf("Check: favorite not found after Add")
	}
	ok, apiErr = svc.Check(ctx, favUser, favSession, 1)
	if apiErr != nil {
		t.Fatalf("Check: %v", apiErr)
	}
	if ok {
		t.Fatalf("Check: outfit 1 should not be favorited")
	}
}

func TestFavoritesAddTwiceKeepsOneEntry(t *testing.T) {
	bucket := newFakeBucket()
	seedResultRecord(t, bucket)
	svc := NewFavoritesService(testLogger(t), bucket, nil)
	ctx := context.Background()

	if _, apiErr := svc.Add(ctx, favUser, favSession, 0); apiErr != nil {
		t.Fatalf("Add: %v", apiErr)
	}
	fav, apiErr := svc.Add(ctx, favUser, favSession, 0)
	if apiErr != nil {
		t.Fatalf("Add repeat: %v", apiErr)
	}
	if fav == nil || fav.OutfitName != "Smart Casual" {
		t.Fatalf("Add repeat favorite: got=%+v", fav)
	}

	record, apiErr := svc.Get(ctx, favUser)
	if apiErr != nil {
		t.Fatalf("Get: %v", apiErr)
	}
	if len(record.Favorites) != 1 {
		t.Fatalf("favorites count: want=1 got=%d", len(record.Favorites))
	}
}

func TestFavoritesAddRejectsForeignSession(t *testing.T) {
	bucket := newFakeBucket()
	seedResultRecord(t, bucket)
	svc := NewFavoritesService(testLogger(t), bucket, nil)

	_, apiErr := svc.Add(context.Background(), "user_2xyz", favSession, 0)
	if apiErr == nil {
		t.Fatalf("Add: expected error for foreign session")
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("Add foreign session: want=%d got=%d", http.StatusNotFound, apiErr.Status)
	}
}

func TestFavoritesAddOutfitIndexOutOfRange(t *testing.T) {
	bucket := newFakeBucket()
	seedResultRecord(t, bucket)
	svc := NewFavoritesService(testLogger(t), bucket, nil)

	_, apiErr := svc.Add(context.Background(), favUser, favSession, 5)
	if apiErr == nil {
		t.Fatalf("Add: expected error for out-of-range index")
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("Add out-of-range: want=%d got=%d", http.StatusBadRequest, apiErr.Status)
	}
}

func TestFavoritesRemove(t *testing.T) {
	bucket := newFakeBucket()
	seedResultRecord(t, bucket)
	svc := NewFavoritesService(testLogger(t), bucket, nil)
	ctx := context.Background()

	if _, apiErr := svc.Add(ctx, favUser, favSession, 0); apiErr != nil {
		t.Fatalf("Add: %v", apiErr)
	}
	if apiErr := svc.Remove(ctx, favUser, favSession, 0); apiErr != nil {
		t.Fatalf("Remove: %v", apiErr)
	}
	ok, apiErr := svc.Check(ctx, favUser, favSession, 0)
	if apiErr != nil {
		t.Fatalf("Check: %v", apiErr)
	}
	if ok {
		t.Fatalf("Check: favorite survived Remove")
	}

	if apiErr := svc.Remove(ctx, favUser, favSession, 0); apiErr != nil {
		t.Fatalf("Remove absent favorite should succeed: %v", apiErr)
	}
}

func TestFavoritesGetEmpty(t *testing.T) {
	svc := NewFavoritesService(testLogger(t), newFakeBucket(), nil)

	record, apiErr := svc.Get(context.Background(), favUser)
	if apiErr != nil {
		t.Fatalf("Get: %v", apiErr)
	}
	if record.Favorites == nil || len(record.Favorites) != 0 {
		t.Fatalf("Get empty: want empty slice got=%+v", record.Favorites)
	}
}

func TestFavoritesPruneSession(t *testing.T) {
	bucket := newFakeBucket()
	seedResultRecord(t, bucket)
	svc := NewFavoritesService(testLogger(t), bucket, nil)
	ctx := context.Background()

	if _, apiErr := svc.Add(ctx, favUser, favSession, 0); apiErr != nil {
		t.Fatalf("Add: %v", apiErr)
	}
	if _, apiErr := svc.Add(ctx, favUser, favSession, 1); apiErr != nil {
		t.Fatalf("Add: %v", apiErr)
	}
	if err := svc.PruneSession(ctx, favUser, favSession); err != nil {
		t.Fatalf("PruneSession: %v", err)
	}
	record, apiErr := svc.Get(ctx, favUser)
	if apiErr != nil {
		t.Fatalf("Get: %v", apiErr)
	}
	if len(record.Favorites) != 0 {
		t.Fatalf("PruneSession: favorites remain: %+v", record.Favorites)
	}
}
