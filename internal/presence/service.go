package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/reelnet/backend/internal/cache"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/metrics"
	"github.com/reelnet/backend/internal/models"
	"go.uber.org/zap"
)

// FreshnessWindow is how long a heartbeat counts as "active". The redis key
// expires with it, so a missing key simply means not active.
const FreshnessWindow = 60 * time.Second

const keyPrefix = "presence:"

// record is the ephemeral per-user payload stored in redis.
type record struct {
	Activity     string    `json:"activity"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// RadarEntry is one active followed user in a radar snapshot.
type RadarEntry struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url"`
	Activity     string    `json:"activity"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Service tracks who is active right now. The live copy lives in redis
// under a TTL; the users table keeps a durable last_active_at fallback.
// Snapshots carry no ordering guarantee between polls.
type Service struct {
	redis *cache.RedisClient
}

func NewService(redis *cache.RedisClient) *Service {
	return &Service{redis: redis}
}

// Heartbeat records that userID is active, with an optional coarse activity
// tag ("watching", "scrolling", ...). Called by clients on a fixed interval.
func (s *Service) Heartbeat(ctx context.Context, userID, activity string) error {
	now := time.Now().UTC()

	if s.redis != nil {
		payload, _ := json.Marshal(record{Activity: activity, LastActiveAt: now})
		if err := s.redis.SetEx(ctx, keyPrefix+userID, payload, FreshnessWindow); err != nil {
			// Redis down degrades presence to the DB fallback, nothing fatal.
			logger.Log.Warn("presence heartbeat write failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	dbCtx, cancel := database.WithTimeout(ctx)
	defer cancel()
	err := database.DB.WithContext(dbCtx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_active_at":   now,
			"current_activity": activity,
		}).Error
	if err != nil {
		return err
	}

	metrics.Get().PresenceHeartbeatsTotal.Inc()
	return nil
}

// Radar returns the currently-active users that userID follows. Users who
// turned off activity sharing never appear, no matter what redis says.
func (s *Service) Radar(ctx context.Context, userID string) ([]RadarEntry, error) {
	dbCtx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var followed []models.User
	err := database.DB.WithContext(dbCtx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ? AND users.show_activity_status = ?", userID, true).
		Find(&followed).Error
	if err != nil {
		return nil, err
	}

	entries := []RadarEntry{}
	if len(followed) == 0 || s.redis == nil {
		metrics.Get().PresenceRadarSize.Observe(0)
		return entries, nil
	}

	keys := make([]string, len(followed))
	for i, u := range followed {
		keys[i] = keyPrefix + u.ID
	}

	values, err := s.redis.MGet(ctx, keys...)
	if err != nil {
		// Stale or missing presence is "not active", not an error.
		logger.Log.Warn("presence radar read failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		metrics.Get().PresenceRadarSize.Observe(0)
		return entries, nil
	}

	for i, raw := range values {
		if raw == nil {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		u := followed[i]
		entries = append(entries, RadarEntry{
			UserID:       u.ID,
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			AvatarURL:    u.GetAvatarURL(),
			Activity:     rec.Activity,
			LastActiveAt: rec.LastActiveAt,
		})
	}

	metrics.Get().PresenceRadarSize.Observe(float64(len(entries)))
	return entries, nil
}

// Status is one user's visible presence.
type Status struct {
	Active       bool       `json:"active"`
	Activity     string     `json:"activity,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// Get returns one user's presence, honoring their sharing settings. Missing
// or expired presence comes back inactive with the durable last-active
// timestamp when the user shares it.
func (s *Service) Get(ctx context.Context, userID string) (*Status, error) {
	dbCtx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var user models.User
	if err := database.DB.WithContext(dbCtx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if !user.ShowActivityStatus {
		return &Status{}, nil
	}

	if s.redis != nil {
		raw, err := s.redis.Get(ctx, keyPrefix+userID)
		if err == nil {
			var live record
			if json.Unmarshal([]byte(raw), &live) == nil {
				return &Status{
					Active:       true,
					Activity:     live.Activity,
					LastActiveAt: &live.LastActiveAt,
				}, nil
			}
		}
	}

	if user.ShowLastActive && user.LastActiveAt != nil {
		return &Status{
			Activity:     user.CurrentActivity,
			LastActiveAt: user.LastActiveAt,
		}, nil
	}
	return &Status{}, nil
}
