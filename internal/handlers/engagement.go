package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/engagement"
	"github.com/reelnet/backend/internal/util"
)

// LikeReel likes a reel. Repeating a like is success, not a conflict.
// POST /api/v1/reels/:id/like
func (h *Handlers) LikeReel(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	reelID := c.Param("id")

	result, err := h.engagement.Like(c.Request.Context(), userID, reelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UnlikeReel removes the caller's like.
// DELETE /api/v1/reels/:id/like
func (h *Handlers) UnlikeReel(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	reelID := c.Param("id")

	result, err := h.engagement.Unlike(c.Request.Context(), userID, reelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ShareReel records a share-out of a reel.
// POST /api/v1/reels/:id/share
func (h *Handlers) ShareReel(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	reelID := c.Param("id")

	shared, err := h.engagement.Share(c.Request.Context(), userID, reelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shared": shared})
}

// BookmarkReel bookmarks a reel; a repeat bookmark bumps the revisit count.
// POST /api/v1/reels/:id/bookmark
func (h *Handlers) BookmarkReel(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	reelID := c.Param("id")

	bookmark, err := h.engagement.Bookmark(c.Request.Context(), userID, reelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookmark)
}

// UnbookmarkReel removes the caller's bookmark.
// DELETE /api/v1/reels/:id/bookmark
func (h *Handlers) UnbookmarkReel(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	reelID := c.Param("id")

	if err := h.engagement.Unbookmark(c.Request.Context(), userID, reelID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarked": false})
}

// GetBookmarks lists the caller's bookmarks, sorted by revisit count with
// ?sort=revisits or by recency (default).
// GET /api/v1/bookmarks
func (h *Handlers) GetBookmarks(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	limit := util.ClampLimit(c.Query("limit"), 50, maxListLimit)
	sort := c.DefaultQuery("sort", engagement.BookmarkSortRecent)

	bookmarks, err := h.engagement.ListBookmarks(c.Request.Context(), userID, sort, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks": bookmarks,
		"count":     len(bookmarks),
	})
}

// LikeComment toggles the caller's like on a comment.
// POST /api/v1/comments/:id/like
func (h *Handlers) LikeComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	commentID := c.Param("id")

	result, err := h.engagement.ToggleCommentLike(c.Request.Context(), userID, commentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
