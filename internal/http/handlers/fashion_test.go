package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/apierr"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/ctxutil"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/services"
)

const (
	testUser    = "user_2abc"
	testSession = "user_2abc-1717171717171"
)

type fakeIntake struct {
	resp   *services.AnalyzeResponse
	apiErr *apierr.Error
	gotReq services.AnalyzeRequest
}

func (f *fakeIntake) StartAnalysis(ctx context.Context, userID string, req services.AnalyzeRequest) (*services.AnalyzeResponse, *apierr.Error) {
	f.gotReq = req
	return f.resp, f.apiErr
}

type fakeResults struct {
	record  *fashion.ResultRecord
	status  *services.SessionStatus
	history []fashion.HistoryEntry
	summary *services.DeleteSummary
	apiErr  *apierr.Error
}

func (f *fakeResults) Get(ctx context.Context, userID, sessionID string) (*fashion.ResultRecord, *apierr.Error) {
	return f.record, f.apiErr
}

func (f *fakeResults) Status(ctx context.Context, userID, sessionID string) (*services.SessionStatus, *apierr.Error) {
	return f.status, f.apiErr
}

func (f *fakeResults) History(ctx context.Context, userID string) ([]fashion.HistoryEntry, *apierr.Error) {
	return f.history, f.apiErr
}

func (f *fakeResults) DeleteSession(ctx context.Context, userID, sessionID string) (*services.DeleteSummary, *apierr.Error) {
	return f.summary, f.apiErr
}

// identity stub standing in for the auth middleware
func withIdentity(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func fashionRouter(intake services.IntakeService, results services.ResultsService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFashionHandler(intake, results)
	r := gin.New()
	api := r.Group("/api/fashion")
	if userID != "" {
		api.Use(withIdentity(userID))
	}
	api.POST("/analyze", h.Analyze)
	api.GET("/results/:sessionId", h.GetResults)
	api.GET("/status/:sessionId", h.GetStatus)
	api.GET("/history", h.GetHistory)
	api.DELETE("/sessions/:sessionId", h.DeleteSession)
	return r
}

func TestAnalyzeWithoutIdentityIsUnauthorized(t *testing.T) {
	r := fashionRouter(&fakeIntake{}, &fakeResults{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/fashion/analyze", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAnalyzeAccepted(t *testing.T) {
	intake := &fakeIntake{resp: &services.AnalyzeResponse{SessionID: testSession, Status: "pending"}}
	r := fashionRouter(intake, &fakeResults{}, testUser)

	body := `{"photo":"aGVsbG8=","occasion":"work","quality":"high"}`
	req := httptest.NewRequest(http.MethodPost, "/api/fashion/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("want=%d got=%d body=%s", http.StatusAccepted, rec.Code, rec.Body.String())
	}
	if intake.gotReq.Occasion != "work" || intake.gotReq.Quality != "high" {
		t.Fatalf("intake request: %+v", intake.gotReq)
	}
}

func TestAnalyzeMissingRequiredFields(t *testing.T) {
	r := fashionRouter(&fakeIntake{}, &fakeResults{}, testUser)

	req := httptest.NewRequest(http.MethodPost, "/api/fashion/analyze", strings.NewReader(`{"photo":"aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetResultsProcessingIsHTTP200(t *testing.T) {
	results := &fakeResults{apiErr: apierr.New(http.StatusOK, "PROCESSING", services.ErrResultPending)}
	r := fashionRouter(&fakeIntake{}, results, testUser)

	req := httptest.NewRequest(http.MethodGet, "/api/fashion/results/"+testSession, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("processing poll: want=%d got=%d", http.StatusOK, rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Message != "processing" {
		t.Fatalf("processing body: %s", rec.Body.String())
	}
}

func TestGetResultsNotFoundForForeignSession(t *testing.T) {
	results := &fakeResults{apiErr: apierr.New(http.StatusNotFound, "SESSION_NOT_FOUND", errors.New("session other-user-123 not found"))}
	r := fashionRouter(&fakeIntake{}, results, testUser)

	req := httptest.NewRequest(http.MethodGet, "/api/fashion/results/other-user-123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("want=%d got=%d", http.StatusNotFound, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SESSION_NOT_FOUND") {
		t.Fatalf("error body: %s", rec.Body.String())
	}
}

func TestGetResultsSuccess(t *testing.T) {
	record := &fashion.ResultRecord{
		UserID:    testUser,
		SessionID: testSession,
		Analysis:  json.RawMessage(`{"body_type":"athletic"}`),
	}
	r := fashionRouter(&fakeIntake{}, &fakeResults{record: record}, testUser)

	req := httptest.NewRequest(http.MethodGet, "/api/fashion/results/"+testSession, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want=%d got=%d", http.StatusOK, rec.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			SessionID string `json:"sessionId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Data.SessionID != testSession {
		t.Fatalf("results body: %s", rec.Body.String())
	}
}

func TestDeleteSessionReturnsSummary(t *testing.T) {
	results := &fakeResults{summary: &services.DeleteSummary{SessionID: testSession, DeletedBlobs: 3}}
	r := fashionRouter(&fakeIntake{}, results, testUser)

	req := httptest.NewRequest(http.MethodDelete, "/api/fashion/sessions/"+testSession, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want=%d got=%d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"deletedBlobs":3`) {
		t.Fatalf("summary body: %s", rec.Body.String())
	}
}
