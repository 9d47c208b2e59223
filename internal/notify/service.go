package notify

import (
	"context"
	"time"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/errors"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/metrics"
	"github.com/reelnet/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultListLimit caps notification pages when the client does not ask for
// a smaller one.
const DefaultListLimit = 50

// Input describes one notification fan-out write.
type Input struct {
	RecipientID string
	ActorID     string
	Type        models.NotificationType
	EntityType  models.EntityType
	EntityID    string
	Text        string
	RequestID   *string
}

// Service writes and serves notification records. Delivery beyond the
// database row (push, email) belongs to downstream consumers.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Notify fans out a single notification. Self-notifications are dropped.
// Like notifications coalesce: while the recipient still has an unread like
// for the same entity, a new like updates that row's actor and timestamp
// instead of inserting another one.
func (s *Service) Notify(ctx context.Context, in Input) error {
	if in.RecipientID == in.ActorID {
		return nil
	}

	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	m := metrics.Get()

	if in.Type == models.NotificationTypeLike {
		var existing models.Notification
		err := database.DB.WithContext(ctx).
			Where("recipient_id = ? AND type = ? AND entity_id = ? AND read = ?",
				in.RecipientID, models.NotificationTypeLike, in.EntityID, false).
			First(&existing).Error
		if err == nil {
			updates := map[string]interface{}{
				"actor_id":   in.ActorID,
				"created_at": time.Now().UTC(),
			}
			if in.Text != "" {
				updates["text"] = in.Text
			}
			if err := database.DB.WithContext(ctx).
				Model(&models.Notification{}).
				Where("id = ?", existing.ID).
				Updates(updates).Error; err != nil {
				return err
			}
			m.NotificationsCoalesced.Inc()
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	notification := models.Notification{
		RecipientID: in.RecipientID,
		ActorID:     in.ActorID,
		Type:        in.Type,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		Text:        in.Text,
		RequestID:   in.RequestID,
	}
	if err := database.DB.WithContext(ctx).Create(&notification).Error; err != nil {
		return err
	}

	m.NotificationsFanoutTotal.WithLabelValues(string(in.Type)).Inc()
	return nil
}

// MarkRead marks the given notification ids read for recipient. With no ids
// it marks everything. Ids owned by other users are ignored silently.
func (s *Service) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	query := database.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	result := query.Update("read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Dismiss deletes a single notification owned by recipient. A foreign or
// unknown id is NotFound.
func (s *Service) Dismiss(ctx context.Context, recipientID, id string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	result := database.DB.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("notification")
	}
	return nil
}

// View is a notification enriched for the client: actor display fields and,
// for reel entities, the reel's thumbnail. Joined at read time.
type View struct {
	ID          string                  `json:"id"`
	Type        models.NotificationType `json:"type"`
	EntityType  models.EntityType       `json:"entity_type"`
	EntityID    string                  `json:"entity_id"`
	Text        string                  `json:"text"`
	Read        bool                    `json:"read"`
	RequestID   *string                 `json:"request_id,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	Actor       ActorInfo               `json:"actor"`
	ReelThumb   string                  `json:"reel_thumbnail_url,omitempty"`
}

// ActorInfo is the display subset of the acting user.
type ActorInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// List returns the recipient's notifications newest first, at most limit.
func (s *Service) List(ctx context.Context, recipientID string, limit int) ([]View, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var notifications []models.Notification
	err := database.DB.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	thumbs := s.reelThumbnails(ctx, notifications)

	views := make([]View, 0, len(notifications))
	for _, n := range notifications {
		view := View{
			ID:         n.ID,
			Type:       n.Type,
			EntityType: n.EntityType,
			EntityID:   n.EntityID,
			Text:       n.Text,
			Read:       n.Read,
			RequestID:  n.RequestID,
			CreatedAt:  n.CreatedAt,
			Actor: ActorInfo{
				ID:          n.Actor.ID,
				Username:    n.Actor.Username,
				DisplayName: n.Actor.DisplayName,
				AvatarURL:   n.Actor.GetAvatarURL(),
			},
		}
		if n.EntityType == models.EntityTypeReel {
			view.ReelThumb = thumbs[n.EntityID]
		}
		views = append(views, view)
	}
	return views, nil
}

// reelThumbnails loads thumbnail URLs for every reel referenced in the page.
// Best effort; a failed lookup just leaves thumbnails empty.
func (s *Service) reelThumbnails(ctx context.Context, notifications []models.Notification) map[string]string {
	ids := make([]string, 0, len(notifications))
	seen := make(map[string]bool, len(notifications))
	for _, n := range notifications {
		if n.EntityType == models.EntityTypeReel && !seen[n.EntityID] {
			seen[n.EntityID] = true
			ids = append(ids, n.EntityID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var reels []models.Reel
	if err := database.DB.WithContext(ctx).
		Select("id", "thumbnail_url").
		Where("id IN ?", ids).
		Find(&reels).Error; err != nil {
		logger.Log.Warn("notification thumbnail join failed", zap.Error(err))
		return nil
	}

	thumbs := make(map[string]string, len(reels))
	for _, reel := range reels {
		thumbs[reel.ID] = reel.ThumbnailURL
	}
	return thumbs
}

// Counts returns total and unread notification counts for recipient.
func (s *Service) Counts(ctx context.Context, recipientID string) (total int64, unread int64, err error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	err = database.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = database.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&unread).Error
	if err != nil {
		return 0, 0, err
	}

	return total, unread, nil
}
