package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// QueryTimeout bounds every storage call made through WithTimeout. A
// timed-out call surfaces as retryable, it never hangs a handler.
const QueryTimeout = 5 * time.Second

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "reelnet")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	gormLogger := gormlogger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true, // duplicate keys surface as gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	logger.Log.Info("Database connected")

	return nil
}

// WithTimeout returns a context bounded by QueryTimeout for storage calls.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout)
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	// Enable UUID extension for PostgreSQL
	err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
	if err != nil {
		logger.Log.Warn("Could not create uuid-ossp extension: " + err.Error())
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Reel{},
		&models.Comment{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Notification{},
		&models.Like{},
		&models.Share{},
		&models.Bookmark{},
		&models.CommentLike{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes creates performance indexes beyond what the model tags declare
func createIndexes() error {
	// User lookups
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")

	// Follow graph traversal
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_following_created ON follows (following_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_follower_created ON follows (follower_id, created_at DESC)")

	// Follow request inbox, newest first
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follow_requests_target_created ON follow_requests (target_id, created_at DESC)")

	// Notification inbox: newest-first list plus the unread coalescing probe
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_inbox ON notifications (recipient_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_coalesce ON notifications (recipient_id, type, entity_id) WHERE read = false")

	// Engagement listings
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookmarks_user_revisits ON bookmarks (user_id, revisit_count DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookmarks_user_visited ON bookmarks (user_id, last_visited_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_reel_created ON comments (reel_id, created_at DESC) WHERE is_deleted = false")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reels_user_created ON reels (user_id, created_at DESC)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
