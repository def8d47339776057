package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-app/internal/service"
)

// FeedHandler mantiene dependencias para los endpoints de feeds paginados.
type FeedHandler struct {
	logger   *zap.Logger
	feedServ *service.FeedService
}

// NewFeedHandler crea una instancia de FeedHandler con dependencias necesarias.
func NewFeedHandler(logger *zap.Logger, feedServ *service.FeedService) *FeedHandler {
	return &FeedHandler{
		logger:   logger,
		feedServ: feedServ,
	}
}

// UserData maneja GET /userdata?page&postCount.
func (h *FeedHandler) UserData(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	page, pageSize := pageParams(c)
	feed, err := h.feedServ.UserFeed(c.Request.Context(), callerID, page, pageSize)
	if err != nil {
		h.respondError(c, err, "could not load user feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "ok",
		"user":        feed.User,
		"posts":       feed.Posts,
		"totalPages":  feed.TotalPages,
		"currentPage": feed.CurrentPage,
	})
}

// NewsFeed maneja GET /newsfeed?page&postCount.
func (h *FeedHandler) NewsFeed(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	page, pageSize := pageParams(c)
	feed, err := h.feedServ.GlobalFeed(c.Request.Context(), callerID, page, pageSize)
	if err != nil {
		h.respondError(c, err, "could not load news feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "ok",
		"user":        feed.User,
		"posts":       feed.Posts,
		"totalPages":  feed.TotalPages,
		"currentPage": feed.CurrentPage,
	})
}

// pageParams lee page y postCount de la query. Un page ausente vale 1; un
// page explícito fuera de rango lo rechaza el servicio.
func pageParams(c *gin.Context) (int, int) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		page, _ = strconv.Atoi(raw)
	}
	pageSize, _ := strconv.Atoi(c.Query("postCount"))
	return page, pageSize
}

func (h *FeedHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidPage):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "page must be 1 or greater"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
	default:
		h.logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
	}
}
