package engagement

import (
	"context"
	"testing"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/errors"
	"github.com/reelnet/backend/internal/models"
	"github.com/reelnet/backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type EngagementServiceTestSuite struct {
	suite.Suite
	svc *Service

	owner  *models.User
	viewer *models.User
	reel   *models.Reel
}

func (suite *EngagementServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{},
		&models.Reel{},
		&models.Comment{},
		&models.Like{},
		&models.Share{},
		&models.Bookmark{},
		&models.CommentLike{},
		&models.Notification{},
	))

	database.DB = db
	suite.svc = NewService(notify.NewService())
}

func (suite *EngagementServiceTestSuite) SetupTest() {
	tables := []string{
		"notifications", "comment_likes", "bookmarks", "shares", "likes",
		"comments", "reels", "users",
	}
	for _, table := range tables {
		require.NoError(suite.T(), database.DB.Exec("DELETE FROM "+table).Error)
	}

	suite.owner = suite.makeUser("owner")
	suite.viewer = suite.makeUser("viewer")

	suite.reel = &models.Reel{
		UserID:   suite.owner.ID,
		VideoURL: "https://cdn.reelnet.dev/videos/test.mp4",
	}
	require.NoError(suite.T(), database.DB.Create(suite.reel).Error)
}

func (suite *EngagementServiceTestSuite) makeUser(username string) *models.User {
	user := &models.User{
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		IsPublic:    true,
	}
	require.NoError(suite.T(), database.DB.Create(user).Error)
	return user
}

func (suite *EngagementServiceTestSuite) TestLikeUnlikeLike() {
	t := suite.T()
	ctx := context.Background()

	result, err := suite.svc.Like(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.EqualValues(t, 1, result.LikeCount)

	result, err = suite.svc.Unlike(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Zero(t, result.LikeCount)

	result, err = suite.svc.Like(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.LikeCount)

	// Exactly one row survives the round trip
	var rows int64
	database.DB.Model(&models.Like{}).
		Where("user_id = ? AND reel_id = ?", suite.viewer.ID, suite.reel.ID).
		Count(&rows)
	assert.EqualValues(t, 1, rows)

	// Cached counter follows the count query
	var reel models.Reel
	require.NoError(t, database.DB.First(&reel, "id = ?", suite.reel.ID).Error)
	assert.Equal(t, 1, reel.LikeCount)
}

func (suite *EngagementServiceTestSuite) TestDoubleLikeIsIdempotent() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.svc.Like(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	result, err := suite.svc.Like(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.LikeCount)

	// The second like did not fan out a second notification
	var notifications int64
	database.DB.Model(&models.Notification{}).Count(&notifications)
	assert.EqualValues(t, 1, notifications)
}

func (suite *EngagementServiceTestSuite) TestLikeNotifiesOwnerNotSelf() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.svc.Like(ctx, suite.owner.ID, suite.reel.ID)
	require.NoError(t, err)

	var notifications int64
	database.DB.Model(&models.Notification{}).Count(&notifications)
	assert.Zero(t, notifications)

	_, err = suite.svc.Like(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, database.DB.First(&notification).Error)
	assert.Equal(t, suite.owner.ID, notification.RecipientID)
	assert.Equal(t, suite.viewer.ID, notification.ActorID)
	assert.Equal(t, models.NotificationTypeLike, notification.Type)
}

func (suite *EngagementServiceTestSuite) TestLikeUnknownReel() {
	t := suite.T()

	_, err := suite.svc.Like(context.Background(), suite.viewer.ID, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNotFound, apiErr.Code)
}

func (suite *EngagementServiceTestSuite) TestShareOncePerUser() {
	t := suite.T()
	ctx := context.Background()

	shared, err := suite.svc.Share(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.True(t, shared)

	shared, err = suite.svc.Share(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.False(t, shared)

	var reel models.Reel
	require.NoError(t, database.DB.First(&reel, "id = ?", suite.reel.ID).Error)
	assert.Equal(t, 1, reel.ShareCount)
}

func (suite *EngagementServiceTestSuite) TestBookmarkRevisits() {
	t := suite.T()
	ctx := context.Background()

	first, err := suite.svc.Bookmark(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.Zero(t, first.RevisitCount)
	assert.Nil(t, first.LastVisitedAt)

	second, err := suite.svc.Bookmark(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.RevisitCount)
	require.NotNil(t, second.LastVisitedAt)

	third, err := suite.svc.Bookmark(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, third.RevisitCount)

	// Still a single row
	var rows int64
	database.DB.Model(&models.Bookmark{}).Count(&rows)
	assert.EqualValues(t, 1, rows)
}

func (suite *EngagementServiceTestSuite) TestUnbookmark() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.svc.Bookmark(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)

	require.NoError(t, suite.svc.Unbookmark(ctx, suite.viewer.ID, suite.reel.ID))

	err = suite.svc.Unbookmark(ctx, suite.viewer.ID, suite.reel.ID)
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNotFound, apiErr.Code)
}

func (suite *EngagementServiceTestSuite) TestListBookmarksByRevisits() {
	t := suite.T()
	ctx := context.Background()

	other := models.Reel{UserID: suite.owner.ID, VideoURL: "https://cdn.reelnet.dev/videos/other.mp4"}
	require.NoError(t, database.DB.Create(&other).Error)

	_, err := suite.svc.Bookmark(ctx, suite.viewer.ID, suite.reel.ID)
	require.NoError(t, err)
	_, err = suite.svc.Bookmark(ctx, suite.viewer.ID, other.ID)
	require.NoError(t, err)

	// Revisit the second reel twice so it ranks first
	_, err = suite.svc.Bookmark(ctx, suite.viewer.ID, other.ID)
	require.NoError(t, err)
	_, err = suite.svc.Bookmark(ctx, suite.viewer.ID, other.ID)
	require.NoError(t, err)

	bookmarks, err := suite.svc.ListBookmarks(ctx, suite.viewer.ID, BookmarkSortRevisits, 50)
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, other.ID, bookmarks[0].ReelID)
	assert.Equal(t, 2, bookmarks[0].RevisitCount)
	assert.Equal(t, other.ID, bookmarks[0].Reel.ID)
}

func (suite *EngagementServiceTestSuite) TestToggleCommentLike() {
	t := suite.T()
	ctx := context.Background()

	comment := models.Comment{
		ReelID:  suite.reel.ID,
		UserID:  suite.owner.ID,
		Content: "first",
	}
	require.NoError(t, database.DB.Create(&comment).Error)

	result, err := suite.svc.ToggleCommentLike(ctx, suite.viewer.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.EqualValues(t, 1, result.LikeCount)

	// Add direction notified the comment author
	var notifications int64
	database.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", suite.owner.ID, models.NotificationTypeCommentLike).
		Count(&notifications)
	assert.EqualValues(t, 1, notifications)

	result, err = suite.svc.ToggleCommentLike(ctx, suite.viewer.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Zero(t, result.LikeCount)

	// Remove direction does not notify
	database.DB.Model(&models.Notification{}).Count(&notifications)
	assert.EqualValues(t, 1, notifications)

	var cached models.Comment
	require.NoError(t, database.DB.First(&cached, "id = ?", comment.ID).Error)
	assert.Zero(t, cached.LikeCount)
}

func (suite *EngagementServiceTestSuite) TestCommentLikeNeverNotifiesSelf() {
	t := suite.T()
	ctx := context.Background()

	comment := models.Comment{
		ReelID:  suite.reel.ID,
		UserID:  suite.viewer.ID,
		Content: "my own comment",
	}
	require.NoError(t, database.DB.Create(&comment).Error)

	result, err := suite.svc.ToggleCommentLike(ctx, suite.viewer.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)

	var notifications int64
	database.DB.Model(&models.Notification{}).Count(&notifications)
	assert.Zero(t, notifications)
}

func TestEngagementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EngagementServiceTestSuite))
}
