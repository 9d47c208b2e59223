package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/metrics"
	"github.com/reelnet/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProfileTTL bounds how stale a cached profile may be. Cached profiles are
// only used for display fields; privacy checks always read the database.
const ProfileTTL = 5 * time.Minute

const profileKeyPrefix = "profile:"

// CachedProfile is the display subset of a user that is safe to serve from
// cache. Privacy and approval flags are deliberately excluded.
type CachedProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url"`
	Bio            string `json:"bio"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	ReelCount      int    `json:"reel_count"`
}

// ProfileCache is a read-through cache for user display profiles. All cache
// failures are logged and treated as misses; the caller's loader is the
// source of truth.
type ProfileCache struct {
	redis *RedisClient
}

func NewProfileCache(redis *RedisClient) *ProfileCache {
	return &ProfileCache{redis: redis}
}

func profileFromUser(u *models.User) *CachedProfile {
	return &CachedProfile{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.GetAvatarURL(),
		Bio:            u.Bio,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		ReelCount:      u.ReelCount,
	}
}

// Get returns the cached profile for userID, loading and caching it on a
// miss. A redis outage degrades to loading every time, never to an error.
func (pc *ProfileCache) Get(ctx context.Context, userID string, load func(ctx context.Context) (*models.User, error)) (*CachedProfile, error) {
	m := metrics.Get()
	key := profileKeyPrefix + userID

	if pc.redis != nil {
		raw, err := pc.redis.Get(ctx, key)
		if err == nil {
			var profile CachedProfile
			if jsonErr := json.Unmarshal([]byte(raw), &profile); jsonErr == nil {
				m.CacheHitsTotal.WithLabelValues("profile").Inc()
				return &profile, nil
			}
			// Corrupt entry; drop it and fall through to the loader.
			_ = pc.redis.Del(ctx, key)
		} else if err != redis.Nil {
			logger.Log.Warn("profile cache read failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		m.CacheMissesTotal.WithLabelValues("profile").Inc()
	}

	user, err := load(ctx)
	if err != nil {
		return nil, err
	}

	profile := profileFromUser(user)
	pc.put(ctx, key, profile)
	return profile, nil
}

// Invalidate drops the cached profile after a write to the underlying user
// row. Best effort.
func (pc *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if pc.redis == nil {
		return
	}
	if err := pc.redis.Del(ctx, profileKeyPrefix+userID); err != nil {
		logger.Log.Warn("profile cache invalidation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (pc *ProfileCache) put(ctx context.Context, key string, profile *CachedProfile) {
	if pc.redis == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := pc.redis.SetEx(ctx, key, data, ProfileTTL); err != nil {
		logger.Log.Warn("profile cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
