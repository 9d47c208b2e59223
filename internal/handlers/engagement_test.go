package handlers

import (
	"net/http"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestLikeAndUnlikeReel() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	w, body := suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/like", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["liked"])
	assert.EqualValues(t, 1, body["like_count"])

	// Repeat like stays at one
	w, body = suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/like", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["like_count"])

	w, body = suite.request(http.MethodDelete, "/api/v1/reels/"+reel.ID+"/like", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["liked"])
	assert.EqualValues(t, 0, body["like_count"])
}

func (suite *HandlersTestSuite) TestLikeUnknownReel() {
	t := suite.T()
	viewer := suite.makeUser("viewer", true)

	w, _ := suite.request(http.MethodPost,
		"/api/v1/reels/00000000-0000-0000-0000-000000000000/like", viewer.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestShareReel() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	w, body := suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/share", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["shared"])

	w, body = suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/share", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["shared"])
}

func (suite *HandlersTestSuite) TestBookmarkRevisitFlow() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	w, body := suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/bookmark", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["revisit_count"])

	w, body = suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/bookmark", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["revisit_count"])
	assert.NotNil(t, body["last_visited_at"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/me/bookmarks?sort=revisits", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, _ = suite.request(http.MethodDelete, "/api/v1/reels/"+reel.ID+"/bookmark", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = suite.request(http.MethodDelete, "/api/v1/reels/"+reel.ID+"/bookmark", viewer.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestCreateAndListComments() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	w, body := suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/comments", viewer.ID,
		map[string]string{"content": "nice one"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "nice one", body["content"])

	// Missing content is rejected
	w, _ = suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/comments", viewer.ID,
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = suite.request(http.MethodGet, "/api/v1/reels/"+reel.ID+"/comments", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	// Owner got a comment notification
	var notifications int64
	database.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", owner.ID, models.NotificationTypeComment).
		Count(&notifications)
	assert.EqualValues(t, 1, notifications)
}

func (suite *HandlersTestSuite) TestCommentPermissionNobody() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", owner.ID).
		UpdateColumn("comment_permission", models.CommentPermissionNobody).Error)
	reel := suite.makeReel(owner)

	w, _ := suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/comments", viewer.ID,
		map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner can still comment on their own reel
	w, _ = suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/comments", owner.ID,
		map[string]string{"content": "pinned"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestCommentPermissionFollowers() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", owner.ID).
		UpdateColumn("comment_permission", models.CommentPermissionFollowers).Error)
	reel := suite.makeReel(owner)

	w, _ := suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/comments", viewer.ID,
		map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	suite.request(http.MethodPost, "/api/v1/users/"+owner.ID+"/follow", viewer.ID, nil)

	w, _ = suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/comments", viewer.ID,
		map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestToggleCommentLike() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	comment := models.Comment{ReelID: reel.ID, UserID: owner.ID, Content: "first"}
	require.NoError(t, database.DB.Create(&comment).Error)

	w, body := suite.request(http.MethodPost, "/api/v1/comments/"+comment.ID+"/like", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["liked"])
	assert.EqualValues(t, 1, body["like_count"])

	w, body = suite.request(http.MethodPost, "/api/v1/comments/"+comment.ID+"/like", viewer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["liked"])
	assert.EqualValues(t, 0, body["like_count"])
}
