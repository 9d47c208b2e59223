package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/notify"
	"github.com/reelnet/backend/internal/util"
)

// GetNotifications lists the caller's notifications newest first.
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	limit := util.ClampLimit(c.Query("limit"), notify.DefaultListLimit, notify.DefaultListLimit)

	views, err := h.notifications.List(c.Request.Context(), userID, limit)
	if err != nil {
		util.RespondStorageError(c, err, "notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": views,
		"count":         len(views),
	})
}

// GetNotificationCounts returns total and unread counts for the caller.
// GET /api/v1/notifications/counts
func (h *Handlers) GetNotificationCounts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	total, unread, err := h.notifications.Counts(c.Request.Context(), userID)
	if err != nil {
		util.RespondStorageError(c, err, "notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"unread": unread,
	})
}

// MarkNotificationsRead marks the given ids read, or everything when no ids
// are sent. Ids belonging to other users are ignored.
// POST /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	// An empty body means "mark all read"
	_ = c.ShouldBindJSON(&req)

	updated, err := h.notifications.MarkRead(c.Request.Context(), userID, req.IDs)
	if err != nil {
		util.RespondStorageError(c, err, "notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DismissNotification deletes one notification owned by the caller.
// DELETE /api/v1/notifications/:id
func (h *Handlers) DismissNotification(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.notifications.Dismiss(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dismissed": true})
}
