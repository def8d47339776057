package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-app/internal/domain"
	"social-app/internal/service"
)

// PostHandler mantiene dependencias para los endpoints de publicaciones.
type PostHandler struct {
	logger   *zap.Logger
	postServ *service.PostService
}

// NewPostHandler crea una instancia de PostHandler con dependencias necesarias.
func NewPostHandler(logger *zap.Logger, postServ *service.PostService) *PostHandler {
	return &PostHandler{
		logger:   logger,
		postServ: postServ,
	}
}

// Submit maneja POST /submit.
func (h *PostHandler) Submit(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
		return
	}

	post, err := h.postServ.Create(c.Request.Context(), callerID, req.Title, req.Content)
	if err != nil {
		h.respondError(c, err, "could not create post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Data successfully saved to Database",
		"post":    post,
	})
}

// ToggleLike maneja POST /like/:postId.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	likes, err := h.postServ.ToggleLike(c.Request.Context(), c.Param("postId"), callerID)
	if err != nil {
		h.respondError(c, err, "could not toggle like")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "like toggled",
		"likes":   likes,
	})
}

// AddComment maneja POST /comment/:postId.
func (h *PostHandler) AddComment(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid comment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
		return
	}

	comments, err := h.postServ.AddComment(c.Request.Context(), c.Param("postId"), callerID, req.Text)
	if err != nil {
		h.respondError(c, err, "could not add comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "comment added",
		"comments": comments,
	})
}

// RemoveComment maneja POST /deletecomment/:postId.
func (h *PostHandler) RemoveComment(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	var req struct {
		CommentID string `json:"commentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid delete comment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
		return
	}

	comments, err := h.postServ.RemoveComment(c.Request.Context(), c.Param("postId"), req.CommentID, callerID)
	if err != nil {
		h.respondError(c, err, "could not delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "comment deleted",
		"comments": comments,
	})
}

// Update maneja /update con cualquier método, como el cliente original.
func (h *PostHandler) Update(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	var req struct {
		ID      string  `json:"id" binding:"required"`
		Title   *string `json:"title"`
		Author  *string `json:"author"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
		return
	}

	post, err := h.postServ.Update(c.Request.Context(), req.ID, callerID, domain.PostUpdate{
		Title:   req.Title,
		Author:  req.Author,
		Content: req.Content,
	})
	if err != nil {
		h.respondError(c, err, "could not update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "post updated",
		"post":    post,
	})
}

// DeleteOne maneja POST /deleteOne.
func (h *PostHandler) DeleteOne(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid delete request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
		return
	}

	if err := h.postServ.DeleteOne(c.Request.Context(), req.ID, callerID); err != nil {
		h.respondError(c, err, "could not delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "post deleted"})
}

// DeleteAll maneja DELETE /deleteAll y borra solo los posts del llamador.
func (h *PostHandler) DeleteAll(c *gin.Context) {
	callerID, ok := AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	deleted, err := h.postServ.DeleteAllByOwner(c.Request.Context(), callerID)
	if err != nil {
		h.respondError(c, err, "could not delete posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "posts deleted",
		"deletedCount": deleted,
	})
}

func (h *PostHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not allowed"})
	default:
		h.logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
	}
}
