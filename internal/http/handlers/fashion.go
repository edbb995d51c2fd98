package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/http/response"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/ctxutil"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/services"
)

type FashionHandler struct {
	intake  services.IntakeService
	results services.ResultsService
	proxy   *http.Client
}

func NewFashionHandler(intake services.IntakeService, results services.ResultsService) *FashionHandler {
	return &FashionHandler{
		intake:  intake,
		results: results,
		proxy:   &http.Client{Timeout: 60 * time.Second},
	}
}

func requestUserID(c *gin.Context) (string, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing identity"))
		return "", false
	}
	return rd.UserID, true
}

// POST /api/fashion/analyze
func (h *FashionHandler) Analyze(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	resp, apiErr := h.intake.StartAnalysis(c.Request.Context(), userID, req)
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "data": resp})
}

// GET /api/fashion/results/:sessionId
func (h *FashionHandler) GetResults(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID := c.Param("sessionId")
	record, apiErr := h.results.Get(c.Request.Context(), userID, sessionID)
	if apiErr != nil {
		// A session whose workflow has not persisted yet is a normal poll
		// outcome, not an error status.
		if errors.Is(apiErr, services.ErrResultPending) {
			c.JSON(http.StatusOK, gin.H{
				"success":   false,
				"message":   "processing",
				"sessionId": sessionID,
			})
			return
		}
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": record})
}

// GET /api/fashion/status/:sessionId
func (h *FashionHandler) GetStatus(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	status, apiErr := h.results.Status(c.Request.Context(), userID, c.Param("sessionId"))
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": status})
}

// GET /api/fashion/history
func (h *FashionHandler) GetHistory(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	entries, apiErr := h.results.History(c.Request.Context(), userID)
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": entries})
}

// DELETE /api/fashion/sessions/:sessionId
func (h *FashionHandler) DeleteSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	summary, apiErr := h.results.DeleteSession(c.Request.Context(), userID, c.Param("sessionId"))
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": summary})
}

// GET /api/fashion/download?url=...
//
// Server-side proxy so browsers get an attachment download for images hosted
// on the storage CDN.
func (h *FashionHandler) DownloadImage(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_url", fmt.Errorf("url query parameter is required"))
		return
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		response.RespondError(c, http.StatusBadRequest, "invalid_url", fmt.Errorf("only http(s) urls are supported"))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_url", err)
		return
	}
	resp, err := h.proxy.Do(req)
	if err != nil {
		response.RespondError(c, http.StatusBadGateway, "download_failed", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		response.RespondError(c, http.StatusBadGateway, "download_failed",
			fmt.Errorf("upstream returned %d", resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.DownloadFilename(rawURL)))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, resp.Body)
}
