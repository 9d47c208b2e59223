package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/models"
	"github.com/reelnet/backend/internal/notify"
	"github.com/reelnet/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateCommentRequest is the request body for posting a comment
type CreateCommentRequest struct {
	Content  string  `json:"content" binding:"required,min=1,max=2000"`
	ParentID *string `json:"parent_id"`
}

// CreateComment posts a comment on a reel, honoring the owner's comment
// permission setting, and notifies the owner.
// POST /api/v1/reels/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	reelID := c.Param("id")

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "comment content is required")
		return
	}

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()

	var reel models.Reel
	if err := database.DB.WithContext(ctx).Preload("User").First(&reel, "id = ?", reelID).Error; err != nil {
		util.RespondStorageError(c, err, "reel")
		return
	}

	if reel.UserID != userID {
		switch reel.User.CommentPermission {
		case models.CommentPermissionNobody:
			util.RespondForbidden(c, "comments are disabled on this reel")
			return
		case models.CommentPermissionFollowers:
			following, err := h.social.IsFollowing(c.Request.Context(), userID, reel.UserID)
			if err != nil {
				util.RespondStorageError(c, err, "follow")
				return
			}
			if !following {
				util.RespondForbidden(c, "only followers can comment on this reel")
				return
			}
		}
	}

	if req.ParentID != nil {
		var parent models.Comment
		err := database.DB.WithContext(ctx).
			Where("id = ? AND reel_id = ?", *req.ParentID, reelID).
			First(&parent).Error
		if err != nil {
			util.RespondStorageError(c, err, "parent comment")
			return
		}
	}

	comment := models.Comment{
		ReelID:   reelID,
		UserID:   userID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}
	if err := database.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		util.RespondStorageError(c, err, "comment")
		return
	}

	if err := database.DB.WithContext(ctx).
		Model(&models.Reel{}).
		Where("id = ?", reelID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
		logger.Log.Warn("comment_count refresh failed",
			zap.String("reel_id", reelID),
			zap.Error(err),
		)
	}

	if err := h.notifications.Notify(c.Request.Context(), notify.Input{
		RecipientID: reel.UserID,
		ActorID:     userID,
		Type:        models.NotificationTypeComment,
		EntityType:  models.EntityTypeReel,
		EntityID:    reelID,
		Text:        "commented on your reel",
	}); err != nil {
		logger.Log.Warn("comment notification failed",
			zap.String("reel_id", reelID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments returns a reel's comments newest first with author display
// info.
// GET /api/v1/reels/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	reelID := c.Param("id")
	limit := util.ClampLimit(c.Query("limit"), 50, maxListLimit)

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()

	var comments []models.Comment
	err := database.DB.WithContext(ctx).
		Preload("User").
		Where("reel_id = ? AND is_deleted = ?", reelID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		util.RespondStorageError(c, err, "comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    len(comments),
	})
}
