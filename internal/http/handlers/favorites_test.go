package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/apierr"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/services"
)

type fakeFavorites struct {
	record    *fashion.FavoritesRecord
	favorite  *fashion.FavoriteOutfit
	favorited bool
	apiErr    *apierr.Error

	gotSession string
	gotIndex   int
}

func (f *fakeFavorites) Get(ctx context.Context, userID string) (*fashion.FavoritesRecord, *apierr.Error) {
	return f.record, f.apiErr
}

func (f *fakeFavorites) Add(ctx context.Context, userID, sessionID string, outfitIndex int) (*fashion.FavoriteOutfit, *apierr.Error) {
	f.gotSession, f.gotIndex = sessionID, outfitIndex
	return f.favorite, f.apiErr
}

func (f *fakeFavorites) Remove(ctx context.Context, userID, sessionID string, outfitIndex int) *apierr.Error {
	f.gotSession, f.gotIndex = sessionID, outfitIndex
	return f.apiErr
}

func (f *fakeFavorites) Check(ctx context.Context, userID, sessionID string, outfitIndex int) (bool, *apierr.Error) {
	f.gotSession, f.gotIndex = sessionID, outfitIndex
	return f.favorited, f.apiErr
}

func (f *fakeFavorites) PruneSession(ctx context.Context, userID, sessionID string) error {
	return nil
}

func favoritesRouter(fav services.FavoritesService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFavoritesHandler(fav)
	r := gin.New()
	api := r.Group("/api/fashion", withIdentity(testUser))
	api.GET("/favorites", h.List)
	api.POST("/favorites", h.Add)
	api.DELETE("/favorites/:sessionId/:outfitIndex", h.Remove)
	api.GET("/favorites/check", h.Check)
	return r
}

func TestAddFavoriteCreated(t *testing.T) {
	fav := &fakeFavorites{favorite: &fashion.FavoriteOutfit{SessionID: testSession, OutfitIndex: 1, OutfitName: "Smart Casual"}}
	r := favoritesRouter(fav)

	body := `{"sessionId":"` + testSession + `","outfitIndex":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/fashion/favorites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("want=%d got=%d body=%s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if fav.gotSession != testSession || fav.gotIndex != 1 {
		t.Fatalf("forwarded args: session=%q index=%d", fav.gotSession, fav.gotIndex)
	}
}

func TestAddFavoriteIndexZeroIsValid(t *testing.T) {
	// binding:"required" on a bare int would reject zero; the pointer form
	// must let index 0 through.
	fav := &fakeFavorites{favorite: &fashion.FavoriteOutfit{SessionID: testSession}}
	r := favoritesRouter(fav)

	body := `{"sessionId":"` + testSession + `","outfitIndex":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/fashion/favorites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("want=%d got=%d body=%s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if fav.gotIndex != 0 {
		t.Fatalf("index: want=0 got=%d", fav.gotIndex)
	}
}

func TestAddFavoriteMissingBodyFields(t *testing.T) {
	r := favoritesRouter(&fakeFavorites{})

	req := httptest.NewRequest(http.MethodPost, "/api/fashion/favorites", strings.NewReader(`{"sessionId":"`+testSession+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
}

func TestAddFavoriteServiceErrorPassedThrough(t *testing.T) {
	fav := &fakeFavorites{apiErr: apierr.New(http.StatusNotFound, "SESSION_NOT_FOUND", errors.New("session not found"))}
	r := favoritesRouter(fav)

	body := `{"sessionId":"other-user-123","outfitIndex":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/fashion/favorites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("want=%d got=%d", http.StatusNotFound, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SESSION_NOT_FOUND") {
		t.Fatalf("error body: %s", rec.Body.String())
	}
}

func TestRemoveFavoriteParsesPathParams(t *testing.T) {
	fav := &fakeFavorites{}
	r := favoritesRouter(fav)

	req := httptest.NewRequest(http.MethodDelete, "/api/fashion/favorites/"+testSession+"/2", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if fav.gotSession != testSession || fav.gotIndex != 2 {
		t.Fatalf("forwarded args: session=%q index=%d", fav.gotSession, fav.gotIndex)
	}
}

func TestRemoveFavoriteRejectsNonNumericIndex(t *testing.T) {
	r := favoritesRouter(&fakeFavorites{})

	req := httptest.NewRequest(http.MethodDelete, "/api/fashion/favorites/"+testSession+"/two", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
}

func TestCheckFavorite(t *testing.T) {
	fav := &fakeFavorites{favorited: true}
	r := favoritesRouter(fav)

	req := httptest.NewRequest(http.MethodGet, "/api/fashion/favorites/check?sessionId="+testSession+"&outfitIndex=1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want=%d got=%d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"isFavorited":true`) {
		t.Fatalf("check body: %s", rec.Body.String())
	}
}

func TestCheckFavoriteRequiresSessionID(t *testing.T) {
	r := favoritesRouter(&fakeFavorites{})

	req := httptest.NewRequest(http.MethodGet, "/api/fashion/favorites/check?outfitIndex=1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
}
