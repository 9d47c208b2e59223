package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/reelnet/backend/internal/util"
)

// GetMe returns the caller's own record, always fresh from the database.
// GET /api/v1/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserProfile returns a user's display profile through the read-through
// cache. Cached data is display-only; nothing here feeds privacy decisions.
// GET /api/v1/users/:id/profile
func (h *Handlers) GetUserProfile(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	targetID := c.Param("id")

	profile, err := h.profiles.Get(c.Request.Context(), targetID, func(ctx context.Context) (*models.User, error) {
		dbCtx, cancel := database.WithTimeout(ctx)
		defer cancel()
		var user models.User
		err := database.DB.WithContext(dbCtx).First(&user, "id = ?", targetID).Error
		return &user, err
	})
	if err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfileRequest carries the editable display fields.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateProfile edits the caller's display fields and invalidates their
// cached profile.
// PUT /api/v1/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			util.RespondValidationError(c, "display_name", "display name cannot be empty")
			return
		}
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	h.profiles.Invalidate(c.Request.Context(), user.ID)

	var updated models.User
	if err := database.DB.WithContext(ctx).First(&updated, "id = ?", user.ID).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// PrivacySettings mirrors the privacy columns on User.
type PrivacySettings struct {
	IsPublic              *bool   `json:"is_public"`
	RequireFollowApproval *bool   `json:"require_follow_approval"`
	AllowSuggestions      *bool   `json:"allow_suggestions"`
	AppearInDiscover      *bool   `json:"appear_in_discover"`
	CommentPermission     *string `json:"comment_permission"`
	MentionPermission     *string `json:"mention_permission"`
}

// GetPrivacySettings returns the caller's privacy settings.
// GET /api/v1/users/me/privacy
func (h *Handlers) GetPrivacySettings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_public":               user.IsPublic,
		"require_follow_approval": user.RequireFollowApproval,
		"allow_suggestions":       user.AllowSuggestions,
		"appear_in_discover":      user.AppearInDiscover,
		"comment_permission":      user.CommentPermission,
		"mention_permission":      user.MentionPermission,
	})
}

// UpdatePrivacySettings edits the caller's privacy settings.
// PUT /api/v1/users/me/privacy
func (h *Handlers) UpdatePrivacySettings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req PrivacySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.RequireFollowApproval != nil {
		updates["require_follow_approval"] = *req.RequireFollowApproval
	}
	if req.AllowSuggestions != nil {
		updates["allow_suggestions"] = *req.AllowSuggestions
	}
	if req.AppearInDiscover != nil {
		updates["appear_in_discover"] = *req.AppearInDiscover
	}
	if req.CommentPermission != nil {
		if !validPermission(*req.CommentPermission) {
			util.RespondValidationError(c, "comment_permission", "must be everyone, followers or nobody")
			return
		}
		updates["comment_permission"] = *req.CommentPermission
	}
	if req.MentionPermission != nil {
		if !validPermission(*req.MentionPermission) {
			util.RespondValidationError(c, "mention_permission", "must be everyone, followers or nobody")
			return
		}
		updates["mention_permission"] = *req.MentionPermission
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func validPermission(p string) bool {
	switch models.CommentPermission(p) {
	case models.CommentPermissionEveryone, models.CommentPermissionFollowers, models.CommentPermissionNobody:
		return true
	}
	return false
}

// GetActivitySettings returns the caller's activity sharing settings.
// GET /api/v1/users/me/activity-status
func (h *Handlers) GetActivitySettings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"show_activity_status": user.ShowActivityStatus,
		"show_last_active":     user.ShowLastActive,
	})
}

// UpdateActivitySettings edits the caller's activity sharing settings.
// PUT /api/v1/users/me/activity-status
func (h *Handlers) UpdateActivitySettings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		ShowActivityStatus *bool `json:"show_activity_status"`
		ShowLastActive     *bool `json:"show_last_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.ShowActivityStatus != nil {
		updates["show_activity_status"] = *req.ShowActivityStatus
	}
	if req.ShowLastActive != nil {
		updates["show_last_active"] = *req.ShowLastActive
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
