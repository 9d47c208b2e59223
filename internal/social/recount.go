package social

import (
	"context"
	"math"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/metrics"
	"github.com/reelnet/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecountReport summarizes one counter rebuild pass.
type RecountReport struct {
	UsersScanned   int64 `json:"users_scanned"`
	FollowersFixed int64 `json:"followers_fixed"`
	FollowingFixed int64 `json:"following_fixed"`
	MaxDrift       int64 `json:"max_drift"`
}

// Recount rebuilds the denormalized follower/following counters from the
// follows table. The edge table is the source of truth; counters only
// drift if a past crash split an edge write from its counter update.
func (s *Service) Recount(ctx context.Context) (*RecountReport, error) {
	report := &RecountReport{}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type userCounts struct {
			ID             string
			FollowerCount  int64
			FollowingCount int64
		}

		var users []userCounts
		if err := tx.Model(&models.User{}).
			Select("id", "follower_count", "following_count").
			Find(&users).Error; err != nil {
			return err
		}
		report.UsersScanned = int64(len(users))

		for _, u := range users {
			var followers, following int64
			if err := tx.Model(&models.Follow{}).
				Where("following_id = ?", u.ID).
				Count(&followers).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Follow{}).
				Where("follower_id = ?", u.ID).
				Count(&following).Error; err != nil {
				return err
			}

			if drift := abs64(followers - u.FollowerCount); drift > 0 {
				report.FollowersFixed++
				if drift > report.MaxDrift {
					report.MaxDrift = drift
				}
				if err := tx.Model(&models.User{}).
					Where("id = ?", u.ID).
					UpdateColumn("follower_count", followers).Error; err != nil {
					return err
				}
				logger.Log.Warn("follower_count drift corrected",
					zap.String("user_id", u.ID),
					zap.Int64("stored", u.FollowerCount),
					zap.Int64("actual", followers),
				)
			}
			if drift := abs64(following - u.FollowingCount); drift > 0 {
				report.FollowingFixed++
				if drift > report.MaxDrift {
					report.MaxDrift = drift
				}
				if err := tx.Model(&models.User{}).
					Where("id = ?", u.ID).
					UpdateColumn("following_count", following).Error; err != nil {
					return err
				}
				logger.Log.Warn("following_count drift corrected",
					zap.String("user_id", u.ID),
					zap.Int64("stored", u.FollowingCount),
					zap.Int64("actual", following),
				)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m := metrics.Get()
	m.CounterRecountDrift.WithLabelValues("followers").Set(float64(report.FollowersFixed))
	m.CounterRecountDrift.WithLabelValues("following").Set(float64(report.FollowingFixed))

	return report, nil
}

func abs64(v int64) int64 {
	if v == math.MinInt64 {
		return math.MaxInt64
	}
	if v < 0 {
		return -v
	}
	return v
}
