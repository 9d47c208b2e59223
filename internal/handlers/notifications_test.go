package handlers

import (
	"net/http"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestNotificationLifecycle() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/like", viewer.ID, nil)

	w, body := suite.request(http.MethodGet, "/api/v1/notifications", owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	notifications := body["notifications"].([]interface{})
	first := notifications[0].(map[string]interface{})
	assert.Equal(t, "like", first["type"])
	actor := first["actor"].(map[string]interface{})
	assert.Equal(t, viewer.Username, actor["username"])

	w, body = suite.request(http.MethodGet, "/api/v1/notifications/counts", owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["unread"])

	// Empty body marks everything read
	w, body = suite.request(http.MethodPost, "/api/v1/notifications/read", owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["updated"])

	w, body = suite.request(http.MethodGet, "/api/v1/notifications/counts", owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["unread"])
	assert.EqualValues(t, 1, body["total"])
}

func (suite *HandlersTestSuite) TestLikesCoalesceInFeed() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	first := suite.makeUser("first", true)
	second := suite.makeUser("second", true)
	reel := suite.makeReel(owner)

	suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/like", first.ID, nil)
	suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/like", second.ID, nil)

	w, body := suite.request(http.MethodGet, "/api/v1/notifications", owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	notifications := body["notifications"].([]interface{})
	actor := notifications[0].(map[string]interface{})["actor"].(map[string]interface{})
	assert.Equal(t, second.Username, actor["username"])
}

func (suite *HandlersTestSuite) TestFollowRequestNotificationCarriesRequestID() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	priv := suite.makeUser("priv", false)

	suite.request(http.MethodPost, "/api/v1/users/"+priv.ID+"/follow", alice.ID, nil)

	var request models.FollowRequest
	require.NoError(t, database.DB.First(&request).Error)

	w, body := suite.request(http.MethodGet, "/api/v1/notifications", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	notifications := body["notifications"].([]interface{})
	require.Len(t, notifications, 1)
	view := notifications[0].(map[string]interface{})
	assert.Equal(t, "follow_request", view["type"])
	assert.Equal(t, request.ID, view["request_id"])

	// Accepting via the carried id cleans the notification up
	w, _ = suite.request(http.MethodPost, "/api/v1/follow-requests/"+request.ID+"/accept", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = suite.request(http.MethodGet, "/api/v1/notifications", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])

	// The requester got the acceptance
	w, body = suite.request(http.MethodGet, "/api/v1/notifications", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	notifications = body["notifications"].([]interface{})
	require.Len(t, notifications, 1)
	assert.Equal(t, "follow_accepted", notifications[0].(map[string]interface{})["type"])
}

func (suite *HandlersTestSuite) TestDismissNotification() {
	t := suite.T()
	owner := suite.makeUser("owner", true)
	viewer := suite.makeUser("viewer", true)
	reel := suite.makeReel(owner)

	suite.request(http.MethodPost, "/api/v1/reels/"+reel.ID+"/like", viewer.ID, nil)

	var notification models.Notification
	require.NoError(t, database.DB.First(&notification).Error)

	// Someone else's notification is NotFound
	w, _ := suite.request(http.MethodDelete, "/api/v1/notifications/"+notification.ID, viewer.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := suite.request(http.MethodDelete, "/api/v1/notifications/"+notification.ID, owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["dismissed"])

	w, body = suite.request(http.MethodGet, "/api/v1/notifications", owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
}
