package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/util"
)

// Heartbeat records that the caller is active. Clients call this on a fixed
// interval; a missed beat simply ages the caller out of the radar.
// POST /api/v1/presence/heartbeat
func (h *Handlers) Heartbeat(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Activity string `json:"activity"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.presence.Heartbeat(c.Request.Context(), userID, req.Activity); err != nil {
		util.RespondStorageError(c, err, "presence")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetRadar returns the currently-active users the caller follows.
// GET /api/v1/presence/radar
func (h *Handlers) GetRadar(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	entries, err := h.presence.Radar(c.Request.Context(), userID)
	if err != nil {
		util.RespondStorageError(c, err, "presence")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active": entries,
		"count":  len(entries),
	})
}

// GetUserPresence returns one user's presence, honoring their sharing
// settings.
// GET /api/v1/users/:id/presence
func (h *Handlers) GetUserPresence(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	targetID := c.Param("id")

	status, err := h.presence.Get(c.Request.Context(), targetID)
	if err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, status)
}
