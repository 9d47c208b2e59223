package engagement

import (
	"context"
	"time"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/errors"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/models"
	"github.com/reelnet/backend/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bookmark list orderings.
const (
	BookmarkSortRevisits = "revisits"
	BookmarkSortRecent   = "recent"
)

// Service handles likes, shares, bookmarks and comment likes. Totals come
// from count queries; the cached counters on Reel and Comment are refreshed
// opportunistically and carry no authority.
type Service struct {
	notifications *notify.Service
}

func NewService(notifications *notify.Service) *Service {
	return &Service{notifications: notifications}
}

// LikeResult reports the state after a like or unlike.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// Like records a like for (user, reel). Liking twice is success, not a
// conflict. The reel owner gets a coalescing like notification.
func (s *Service) Like(ctx context.Context, userID, reelID string) (*LikeResult, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var reel models.Reel
	if err := database.DB.WithContext(ctx).First(&reel, "id = ?", reelID).Error; err != nil {
		return nil, errors.FromStorage(err, "reel")
	}

	like := models.Like{UserID: userID, ReelID: reelID}
	result := database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if result.Error != nil {
		return nil, errors.FromStorage(result.Error, "like")
	}

	if result.RowsAffected > 0 {
		if err := s.notifications.Notify(ctx, notify.Input{
			RecipientID: reel.UserID,
			ActorID:     userID,
			Type:        models.NotificationTypeLike,
			EntityType:  models.EntityTypeReel,
			EntityID:    reelID,
			Text:        "liked your reel",
		}); err != nil {
			logger.Log.Warn("like notification failed",
				zap.String("reel_id", reelID),
				zap.Error(err),
			)
		}
	}

	count, err := s.refreshLikeCount(ctx, reelID)
	if err != nil {
		return nil, errors.FromStorage(err, "like")
	}
	return &LikeResult{Liked: true, LikeCount: count}, nil
}

// Unlike removes the like if present. Unliking something never liked is
// success with liked=false.
func (s *Service) Unlike(ctx context.Context, userID, reelID string) (*LikeResult, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND reel_id = ?", userID, reelID).
		Delete(&models.Like{}).Error
	if err != nil {
		return nil, errors.FromStorage(err, "like")
	}

	count, err := s.refreshLikeCount(ctx, reelID)
	if err != nil {
		return nil, errors.FromStorage(err, "like")
	}
	return &LikeResult{Liked: false, LikeCount: count}, nil
}

// refreshLikeCount counts likes and writes the total back onto the reel's
// cached counter.
func (s *Service) refreshLikeCount(ctx context.Context, reelID string) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).
		Model(&models.Like{}).
		Where("reel_id = ?", reelID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if err := database.DB.WithContext(ctx).
		Model(&models.Reel{}).
		Where("id = ?", reelID).
		UpdateColumn("like_count", count).Error; err != nil {
		logger.Log.Warn("like_count cache refresh failed",
			zap.String("reel_id", reelID),
			zap.Error(err),
		)
	}
	return count, nil
}

// Share records a share-out of a reel, once per (user, reel).
func (s *Service) Share(ctx context.Context, userID, reelID string) (shared bool, err error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var reel models.Reel
	if err := database.DB.WithContext(ctx).First(&reel, "id = ?", reelID).Error; err != nil {
		return false, errors.FromStorage(err, "reel")
	}

	share := models.Share{UserID: userID, ReelID: reelID}
	result := database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&share)
	if result.Error != nil {
		return false, errors.FromStorage(result.Error, "share")
	}

	if result.RowsAffected > 0 {
		if err := database.DB.WithContext(ctx).
			Model(&models.Reel{}).
			Where("id = ?", reelID).
			UpdateColumn("share_count", gorm.Expr("share_count + 1")).Error; err != nil {
			logger.Log.Warn("share_count refresh failed",
				zap.String("reel_id", reelID),
				zap.Error(err),
			)
		}
		return true, nil
	}
	return false, nil
}

// Bookmark marks a reel worth revisiting. The first call creates the row;
// every repeat bumps revisit_count and last_visited_at instead of failing.
func (s *Service) Bookmark(ctx context.Context, userID, reelID string) (*models.Bookmark, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var reel models.Reel
	if err := database.DB.WithContext(ctx).First(&reel, "id = ?", reelID).Error; err != nil {
		return nil, errors.FromStorage(err, "reel")
	}

	bookmark := models.Bookmark{UserID: userID, ReelID: reelID}
	result := database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&bookmark)
	if result.Error != nil {
		return nil, errors.FromStorage(result.Error, "bookmark")
	}

	if result.RowsAffected == 0 {
		now := time.Now().UTC()
		err := database.DB.WithContext(ctx).
			Model(&models.Bookmark{}).
			Where("user_id = ? AND reel_id = ?", userID, reelID).
			Updates(map[string]interface{}{
				"revisit_count":   gorm.Expr("revisit_count + 1"),
				"last_visited_at": now,
			}).Error
		if err != nil {
			return nil, errors.FromStorage(err, "bookmark")
		}
	}

	var saved models.Bookmark
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND reel_id = ?", userID, reelID).
		First(&saved).Error
	if err != nil {
		return nil, errors.FromStorage(err, "bookmark")
	}
	return &saved, nil
}

// Unbookmark removes the bookmark; NotFound if it was never there.
func (s *Service) Unbookmark(ctx context.Context, userID, reelID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	result := database.DB.WithContext(ctx).
		Where("user_id = ? AND reel_id = ?", userID, reelID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		return errors.FromStorage(result.Error, "bookmark")
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("bookmark")
	}
	return nil
}

// ListBookmarks returns the user's bookmarks with reels loaded, ordered by
// revisit count (memory-weighted) or recency of last visit.
func (s *Service) ListBookmarks(ctx context.Context, userID, sort string, limit int) ([]models.Bookmark, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	order := "COALESCE(last_visited_at, created_at) DESC"
	if sort == BookmarkSortRevisits {
		order = "revisit_count DESC, COALESCE(last_visited_at, created_at) DESC"
	}

	var bookmarks []models.Bookmark
	err := database.DB.WithContext(ctx).
		Preload("Reel").
		Where("user_id = ?", userID).
		Order(order).
		Limit(limit).
		Find(&bookmarks).Error
	if err != nil {
		return nil, errors.FromStorage(err, "bookmark")
	}
	return bookmarks, nil
}

// CommentLikeResult reports the state after a comment-like toggle.
type CommentLikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToggleCommentLike adds or removes the caller's like on a comment. Only
// the add direction notifies, and never the comment's own author.
func (s *Service) ToggleCommentLike(ctx context.Context, userID, commentID string) (*CommentLikeResult, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var comment models.Comment
	if err := database.DB.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		return nil, errors.FromStorage(err, "comment")
	}

	like := models.CommentLike{UserID: userID, CommentID: commentID}
	result := database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if result.Error != nil {
		return nil, errors.FromStorage(result.Error, "comment like")
	}

	liked := result.RowsAffected > 0
	if liked {
		if err := s.notifications.Notify(ctx, notify.Input{
			RecipientID: comment.UserID,
			ActorID:     userID,
			Type:        models.NotificationTypeCommentLike,
			EntityType:  models.EntityTypeComment,
			EntityID:    commentID,
			Text:        "liked your comment",
		}); err != nil {
			logger.Log.Warn("comment like notification failed",
				zap.String("comment_id", commentID),
				zap.Error(err),
			)
		}
	} else {
		if err := database.DB.WithContext(ctx).
			Where("user_id = ? AND comment_id = ?", userID, commentID).
			Delete(&models.CommentLike{}).Error; err != nil {
			return nil, errors.FromStorage(err, "comment like")
		}
	}

	var count int64
	if err := database.DB.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error; err != nil {
		return nil, errors.FromStorage(err, "comment like")
	}

	if err := database.DB.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("like_count", count).Error; err != nil {
		logger.Log.Warn("comment like_count refresh failed",
			zap.String("comment_id", commentID),
			zap.Error(err),
		)
	}

	return &CommentLikeResult{Liked: liked, LikeCount: count}, nil
}
