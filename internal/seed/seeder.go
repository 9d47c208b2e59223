package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeder fills a development database with realistic social data: users,
// reels, a follow graph with consistent counters, and engagement.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database.
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating reels...")
	reels, err := s.seedReels(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed reels: %w", err)
	}

	logger.Log.Info("Creating follow graph...")
	if err := s.seedFollows(users, 400); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating engagement...")
	if err := s.seedEngagement(users, reels); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Seed complete")
	return nil
}

// SeedTest seeds a minimal fixture set.
func (s *Seeder) SeedTest() error {
	users, err := s.seedUsers(5)
	if err != nil {
		return err
	}
	_, err = s.seedReels(users, 10)
	return err
}

// Clean removes all seeded data. Destructive; dev databases only.
func (s *Seeder) Clean() error {
	tables := []string{
		"comment_likes", "comments", "likes", "shares", "bookmarks",
		"notifications", "follow_requests", "follows", "reels", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Email:        fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.Sentence(8),
			AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			PasswordHash: &hashStr,
			// Roughly a quarter of accounts are private
			IsPublic: rand.Intn(4) != 0,
		}
		if !user.IsPublic {
			user.RequireFollowApproval = true
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedReels(users []models.User, count int) ([]models.Reel, error) {
	activities := []string{"dance", "comedy", "cooking", "travel", "music", "sports"}

	reels := make([]models.Reel, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		tag := activities[rand.Intn(len(activities))]
		reel := models.Reel{
			UserID:       owner.ID,
			Caption:      fmt.Sprintf("%s #%s", gofakeit.Sentence(5), tag),
			VideoURL:     fmt.Sprintf("https://cdn.reelnet.dev/reels/%s.mp4", gofakeit.UUID()),
			ThumbnailURL: fmt.Sprintf("https://cdn.reelnet.dev/thumbs/%s.jpg", gofakeit.UUID()),
			Duration:     float64(5 + rand.Intn(55)),
			IsPublic:     true,
		}
		if err := s.db.Create(&reel).Error; err != nil {
			return nil, err
		}
		reels = append(reels, reel)
	}

	for _, u := range users {
		var n int64
		s.db.Model(&models.Reel{}).Where("user_id = ?", u.ID).Count(&n)
		s.db.Model(&models.User{}).Where("id = ?", u.ID).UpdateColumn("reel_count", n)
	}
	return reels, nil
}

// seedFollows creates random edges and keeps the denormalized counters in
// step, the same pairing the live follow path maintains.
func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		following := users[rand.Intn(len(users))]
		if follower.ID == following.ID {
			continue
		}

		edge := models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			continue
		}

		if err := s.db.Model(&models.User{}).Where("id = ?", following.ID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error; err != nil {
			return err
		}
		if err := s.db.Model(&models.User{}).Where("id = ?", follower.ID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedEngagement(users []models.User, reels []models.Reel) error {
	for _, reel := range reels {
		likers := rand.Intn(8)
		for i := 0; i < likers; i++ {
			user := users[rand.Intn(len(users))]
			like := models.Like{UserID: user.ID, ReelID: reel.ID}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
		}

		var likeCount int64
		s.db.Model(&models.Like{}).Where("reel_id = ?", reel.ID).Count(&likeCount)
		s.db.Model(&models.Reel{}).Where("id = ?", reel.ID).UpdateColumn("like_count", likeCount)

		if rand.Intn(3) == 0 {
			user := users[rand.Intn(len(users))]
			comment := models.Comment{
				ReelID:  reel.ID,
				UserID:  user.ID,
				Content: gofakeit.Sentence(6),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
			s.db.Model(&models.Reel{}).Where("id = ?", reel.ID).
				UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		}

		if rand.Intn(4) == 0 {
			user := users[rand.Intn(len(users))]
			now := time.Now().UTC()
			bookmark := models.Bookmark{
				UserID:        user.ID,
				ReelID:        reel.ID,
				RevisitCount:  rand.Intn(5),
				LastVisitedAt: &now,
			}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&bookmark).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
