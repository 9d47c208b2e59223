package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/cache"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/engagement"
	"github.com/reelnet/backend/internal/notify"
	"github.com/reelnet/backend/internal/presence"
	"github.com/reelnet/backend/internal/social"
)

// Handlers holds the services behind every route.
type Handlers struct {
	social        *social.Service
	notifications *notify.Service
	engagement    *engagement.Service
	presence      *presence.Service
	profiles      *cache.ProfileCache
}

// New wires up the handler set.
func New(
	socialSvc *social.Service,
	notifySvc *notify.Service,
	engagementSvc *engagement.Service,
	presenceSvc *presence.Service,
	profiles *cache.ProfileCache,
) *Handlers {
	return &Handlers{
		social:        socialSvc,
		notifications: notifySvc,
		engagement:    engagementSvc,
		presence:      presenceSvc,
		profiles:      profiles,
	}
}

// Health reports process and database liveness.
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
