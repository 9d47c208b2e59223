package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/errors"
	"github.com/reelnet/backend/internal/util"
)

const maxListLimit = 100

// FollowUser follows the target directly or files a follow request when the
// target requires approval.
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if targetID == "" {
		util.RespondBadRequest(c, "target user id is required")
		return
	}

	result, err := h.social.RequestOrCreateFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UnfollowUser removes the follow edge.
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	if err := h.social.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// GetFollowStatus reports the caller's relationship to the target.
// GET /api/v1/users/:id/follow-status
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	following, err := h.social.IsFollowing(c.Request.Context(), userID, targetID)
	if err != nil {
		util.RespondStorageError(c, err, "follow")
		return
	}
	requested := false
	if !following {
		requested, err = h.social.HasPendingRequest(c.Request.Context(), userID, targetID)
		if err != nil {
			util.RespondStorageError(c, err, "follow request")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"requested": requested,
	})
}

// GetFollowers lists the target's followers.
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	targetID := c.Param("id")
	limit := util.ClampLimit(c.Query("limit"), 50, maxListLimit)

	users, err := h.social.ListFollowers(c.Request.Context(), targetID, limit)
	if err != nil {
		util.RespondStorageError(c, err, "followers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// GetFollowing lists who the target follows.
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	targetID := c.Param("id")
	limit := util.ClampLimit(c.Query("limit"), 50, maxListLimit)

	users, err := h.social.ListFollowing(c.Request.Context(), targetID, limit)
	if err != nil {
		util.RespondStorageError(c, err, "following")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// respondServiceError sends an APIError as-is and wraps anything else as a
// storage error.
func respondServiceError(c *gin.Context, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		util.RespondWithAPIError(c, apiErr)
		return
	}
	util.RespondStorageError(c, err, "request")
}
