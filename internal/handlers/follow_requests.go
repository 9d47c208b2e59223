package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/util"
)

// ListFollowRequests returns the caller's pending follow requests, newest
// first, with requester display info.
// GET /api/v1/follow-requests
func (h *Handlers) ListFollowRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	limit := util.ClampLimit(c.Query("limit"), 50, maxListLimit)

	requests, err := h.social.ListPendingRequests(c.Request.Context(), userID, limit)
	if err != nil {
		util.RespondStorageError(c, err, "follow requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// AcceptFollowRequest approves a pending request addressed to the caller.
// POST /api/v1/follow-requests/:id/accept
func (h *Handlers) AcceptFollowRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	requestID := c.Param("id")

	if err := h.social.ApproveRequest(c.Request.Context(), userID, requestID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// RejectFollowRequest declines a pending request addressed to the caller.
// POST /api/v1/follow-requests/:id/reject
func (h *Handlers) RejectFollowRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	requestID := c.Param("id")

	if err := h.social.RejectRequest(c.Request.Context(), userID, requestID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// CancelFollowRequest withdraws the caller's own pending request.
// DELETE /api/v1/follow-requests/:id
func (h *Handlers) CancelFollowRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	requestID := c.Param("id")

	if err := h.social.CancelRequest(c.Request.Context(), userID, requestID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// CountFollowRequests returns the size of the caller's request inbox, for
// badge rendering.
// GET /api/v1/users/me/follow-requests/count
func (h *Handlers) CountFollowRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	count, err := h.social.CountPendingRequests(c.Request.Context(), userID)
	if err != nil {
		util.RespondStorageError(c, err, "follow requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
