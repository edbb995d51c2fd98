package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/http/response"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/services"
)

type FavoritesHandler struct {
	favorites services.FavoritesService
}

func NewFavoritesHandler(favorites services.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

type favoriteRef struct {
	SessionID   string `json:"sessionId" binding:"required"`
	OutfitIndex *int   `json:"outfitIndex" binding:"required"`
}

// GET /api/fashion/favorites
func (h *FavoritesHandler) List(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	record, apiErr := h.favorites.Get(c.Request.Context(), userID)
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": record})
}

// POST /api/fashion/favorites
func (h *FavoritesHandler) Add(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req favoriteRef
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	favorite, apiErr := h.favorites.Add(c.Request.Context(), userID, req.SessionID, *req.OutfitIndex)
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": favorite})
}

// DELETE /api/fashion/favorites/:sessionId/:outfitIndex
func (h *FavoritesHandler) Remove(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID := c.Param("sessionId")
	index, err := strconv.Atoi(c.Param("outfitIndex"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_outfit_index",
			fmt.Errorf("outfit index must be an integer"))
		return
	}
	if apiErr := h.favorites.Remove(c.Request.Context(), userID, sessionID, index); apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// GET /api/fashion/favorites/check?sessionId=...&outfitIndex=...
func (h *FavoritesHandler) Check(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request",
			fmt.Errorf("sessionId query parameter is required"))
		return
	}
	index, err := strconv.Atoi(c.Query("outfitIndex"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_outfit_index",
			fmt.Errorf("outfit index must be an integer"))
		return
	}
	favorited, apiErr := h.favorites.Check(c.Request.Context(), userID, sessionID, index)
	if apiErr != nil {
		response.RespondAPIError(c, apiErr)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": gin.H{"isFavorited": favorited}})
}
