package social

import (
	"context"
	"fmt"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/errors"
	"github.com/reelnet/backend/internal/metrics"
	"github.com/reelnet/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowResult reports what a follow attempt produced: either a live edge
// or a pending request awaiting the target's approval.
type FollowResult struct {
	Following bool                  `json:"following"`
	Requested bool                  `json:"requested"`
	Request   *models.FollowRequest `json:"request,omitempty"`
}

// Service owns the follow graph: edges, the request/approval workflow, and
// the denormalized follower/following counters that must move in the same
// transaction as every edge write.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// RequestOrCreateFollow follows target directly when their account is open,
// or files a pending FollowRequest when they require approval. Repeating a
// pending request is a no-op returning the existing request.
func (s *Service) RequestOrCreateFollow(ctx context.Context, requesterID, targetID string) (*FollowResult, error) {
	if requesterID == targetID {
		return nil, errors.BadRequest("cannot follow yourself")
	}

	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	m := metrics.Get()

	var target models.User
	if err := database.DB.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		return nil, errors.FromStorage(err, "user")
	}

	var existingEdge models.Follow
	err := database.DB.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", requesterID, targetID).
		First(&existingEdge).Error
	if err == nil {
		m.FollowOpsTotal.WithLabelValues("follow", "already_following").Inc()
		return nil, errors.Conflict("follow")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errors.FromStorage(err, "follow")
	}

	if target.RequiresApproval() {
		request, created, err := s.upsertPendingRequest(ctx, requesterID, targetID)
		if err != nil {
			return nil, errors.FromStorage(err, "follow request")
		}
		if created {
			// The notification carries the canonical request id so the
			// recipient can act on it directly.
			s.notifyFollowRequest(ctx, request)
		}
		m.FollowOpsTotal.WithLabelValues("follow", "requested").Inc()
		return &FollowResult{Requested: true, Request: request}, nil
	}

	if err := s.createEdge(ctx, requesterID, targetID); err != nil {
		return nil, err
	}
	m.FollowOpsTotal.WithLabelValues("follow", "followed").Inc()
	return &FollowResult{Following: true}, nil
}

// createEdge inserts the edge and moves both counters in one transaction.
// A duplicate-key race is success with no counter movement.
func (s *Service) createEdge(ctx context.Context, followerID, followingID string) error {
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost a race to a concurrent identical follow; the winner
			// already moved the counters.
			return nil
		}
		return incrementFollowCounters(tx, followerID, followingID)
	})
	if err != nil {
		return errors.FromStorage(err, "follow")
	}
	return nil
}

// ApproveRequest turns a pending request into a live edge. The whole effect
// commits as one unit: edge insert, counter increments, follow_accepted
// notification, request deletion, and cleanup of the originating
// follow_request notification.
func (s *Service) ApproveRequest(ctx context.Context, recipientID, requestID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FollowRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return errors.FromStorage(err, "follow request")
		}
		if request.TargetID != recipientID {
			return errors.Unauthorized("follow request belongs to another user")
		}

		edge := models.Follow{FollowerID: request.RequesterID, FollowingID: request.TargetID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			if err := incrementFollowCounters(tx, request.RequesterID, request.TargetID); err != nil {
				return err
			}
			notification := models.Notification{
				RecipientID: request.RequesterID,
				ActorID:     request.TargetID,
				Type:        models.NotificationTypeFollowAccepted,
				EntityType:  models.EntityTypeUser,
				EntityID:    request.TargetID,
				Text:        "accepted your follow request",
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.FollowRequest{}, "id = ?", request.ID).Error; err != nil {
			return err
		}
		return deleteRequestNotification(tx, request.ID)
	})
	if err != nil {
		return asAPIError(err, "follow request")
	}

	metrics.Get().FollowRequestsResolved.WithLabelValues("accepted").Inc()
	return nil
}

// RejectRequest removes a pending request with no effect on edges or
// counters, beyond cleaning up the originating notification.
func (s *Service) RejectRequest(ctx context.Context, recipientID, requestID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FollowRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return errors.FromStorage(err, "follow request")
		}
		if request.TargetID != recipientID {
			return errors.Unauthorized("follow request belongs to another user")
		}

		if err := tx.Delete(&models.FollowRequest{}, "id = ?", request.ID).Error; err != nil {
			return err
		}
		return deleteRequestNotification(tx, request.ID)
	})
	if err != nil {
		return asAPIError(err, "follow request")
	}

	metrics.Get().FollowRequestsResolved.WithLabelValues("rejected").Inc()
	return nil
}

// CancelRequest lets the requester withdraw their own pending request.
func (s *Service) CancelRequest(ctx context.Context, requesterID, requestID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FollowRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return errors.FromStorage(err, "follow request")
		}
		if request.RequesterID != requesterID {
			return errors.Unauthorized("follow request belongs to another user")
		}

		if err := tx.Delete(&models.FollowRequest{}, "id = ?", request.ID).Error; err != nil {
			return err
		}
		return deleteRequestNotification(tx, request.ID)
	})
	if err != nil {
		return asAPIError(err, "follow request")
	}

	metrics.Get().FollowRequestsResolved.WithLabelValues("cancelled").Inc()
	return nil
}

// Unfollow deletes the edge and walks both counters back down, clamped at
// zero so a recount drift can never go negative.
func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND following_id = ?", followerID, targetID).
			Delete(&models.Follow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.NotFound("follow")
		}
		return decrementFollowCounters(tx, followerID, targetID)
	})
	if err != nil {
		return asAPIError(err, "follow")
	}

	metrics.Get().FollowOpsTotal.WithLabelValues("unfollow", "ok").Inc()
	return nil
}

// IsFollowing reports whether an edge follower -> target exists.
func (s *Service) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var count int64
	err := database.DB.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Count(&count).Error
	return count > 0, err
}

// HasPendingRequest reports whether requester already has a pending request
// on target.
func (s *Service) HasPendingRequest(ctx context.Context, requesterID, targetID string) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var count int64
	err := database.DB.WithContext(ctx).
		Model(&models.FollowRequest{}).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Count(&count).Error
	return count > 0, err
}

// ListFollowers returns users following userID, most recent first.
func (s *Service) ListFollowers(ctx context.Context, userID string, limit int) ([]models.User, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var users []models.User
	err := database.DB.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ListFollowing returns users that userID follows, most recent first.
func (s *Service) ListFollowing(ctx context.Context, userID string, limit int) ([]models.User, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var users []models.User
	err := database.DB.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ListPendingRequests returns targetID's inbox of pending follow requests,
// newest first, with requester display info loaded.
func (s *Service) ListPendingRequests(ctx context.Context, targetID string, limit int) ([]models.FollowRequest, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var requests []models.FollowRequest
	err := database.DB.WithContext(ctx).
		Preload("Requester").
		Where("target_id = ?", targetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

// CountPendingRequests returns the size of targetID's request inbox.
func (s *Service) CountPendingRequests(ctx context.Context, targetID string) (int64, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var count int64
	err := database.DB.WithContext(ctx).
		Model(&models.FollowRequest{}).
		Where("target_id = ?", targetID).
		Count(&count).Error
	return count, err
}

// upsertPendingRequest creates the pending request if none exists and
// reports whether this call created it.
func (s *Service) upsertPendingRequest(ctx context.Context, requesterID, targetID string) (*models.FollowRequest, bool, error) {
	request := models.FollowRequest{
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      models.FollowRequestStatusPending,
	}
	result := database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&request)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &request, true, nil
	}

	var existing models.FollowRequest
	err := database.DB.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// notifyFollowRequest writes the follow_request notification. Best effort;
// the request itself already committed.
func (s *Service) notifyFollowRequest(ctx context.Context, request *models.FollowRequest) {
	notification := models.Notification{
		RecipientID: request.TargetID,
		ActorID:     request.RequesterID,
		Type:        models.NotificationTypeFollowRequest,
		EntityType:  models.EntityTypeFollowRequest,
		EntityID:    request.ID,
		Text:        "requested to follow you",
		RequestID:   &request.ID,
	}
	if err := database.DB.WithContext(ctx).Create(&notification).Error; err == nil {
		metrics.Get().NotificationsFanoutTotal.
			WithLabelValues(string(models.NotificationTypeFollowRequest)).Inc()
	}
}

func incrementFollowCounters(tx *gorm.DB, followerID, followingID string) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", followingID).
		UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error; err != nil {
		return fmt.Errorf("increment follower_count: %w", err)
	}
	if err := tx.Model(&models.User{}).
		Where("id = ?", followerID).
		UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
		return fmt.Errorf("increment following_count: %w", err)
	}
	return nil
}

func decrementFollowCounters(tx *gorm.DB, followerID, followingID string) error {
	// CASE instead of GREATEST keeps the clamp portable across postgres and
	// the sqlite used in tests.
	if err := tx.Model(&models.User{}).
		Where("id = ?", followingID).
		UpdateColumn("follower_count",
			gorm.Expr("CASE WHEN follower_count > 0 THEN follower_count - 1 ELSE 0 END")).Error; err != nil {
		return fmt.Errorf("decrement follower_count: %w", err)
	}
	if err := tx.Model(&models.User{}).
		Where("id = ?", followerID).
		UpdateColumn("following_count",
			gorm.Expr("CASE WHEN following_count > 0 THEN following_count - 1 ELSE 0 END")).Error; err != nil {
		return fmt.Errorf("decrement following_count: %w", err)
	}
	return nil
}

// deleteRequestNotification removes the follow_request notification that
// references a resolved request.
func deleteRequestNotification(tx *gorm.DB, requestID string) error {
	return tx.Where("type = ? AND request_id = ?",
		models.NotificationTypeFollowRequest, requestID).
		Delete(&models.Notification{}).Error
}

// asAPIError passes APIErrors through untouched and maps raw storage errors
// onto the taxonomy.
func asAPIError(err error, resource string) error {
	if apiErr, ok := err.(*errors.APIError); ok {
		return apiErr
	}
	return errors.FromStorage(err, resource)
}
