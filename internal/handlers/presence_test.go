package handlers

import (
	"net/http"
	"time"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/reelnet/backend/internal/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestHeartbeatAndRadar() {
	t := suite.T()
	watcher := suite.makeUser("watcher", true)
	friend := suite.makeUser("friend", true)

	suite.request(http.MethodPost, "/api/v1/users/"+friend.ID+"/follow", watcher.ID, nil)

	w, _ := suite.request(http.MethodPost, "/api/v1/presence/heartbeat", friend.ID,
		map[string]string{"activity": "watching"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := suite.request(http.MethodGet, "/api/v1/presence/radar", watcher.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	active := body["active"].([]interface{})
	entry := active[0].(map[string]interface{})
	assert.Equal(t, friend.ID, entry["user_id"])
	assert.Equal(t, "watching", entry["activity"])
}

func (suite *HandlersTestSuite) TestRadarAgesOutSilentUsers() {
	t := suite.T()
	watcher := suite.makeUser("watcher", true)
	friend := suite.makeUser("friend", true)

	suite.request(http.MethodPost, "/api/v1/users/"+friend.ID+"/follow", watcher.ID, nil)
	suite.request(http.MethodPost, "/api/v1/presence/heartbeat", friend.ID, nil)

	suite.redis.FastForward(presence.FreshnessWindow + time.Second)

	w, body := suite.request(http.MethodGet, "/api/v1/presence/radar", watcher.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
}

func (suite *HandlersTestSuite) TestGetUserPresenceHonorsPrivacy() {
	t := suite.T()
	watcher := suite.makeUser("watcher", true)
	friend := suite.makeUser("friend", true)

	suite.request(http.MethodPost, "/api/v1/presence/heartbeat", friend.ID,
		map[string]string{"activity": "scrolling"})

	w, body := suite.request(http.MethodGet, "/api/v1/users/"+friend.ID+"/presence", watcher.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "scrolling", body["activity"])

	// Turning sharing off hides the live heartbeat
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", friend.ID).
		UpdateColumn("show_activity_status", false).Error)

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+friend.ID+"/presence", watcher.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["active"])
	assert.Nil(t, body["activity"])
}

func (suite *HandlersTestSuite) TestUpdateActivitySettings() {
	t := suite.T()
	user := suite.makeUser("user", true)

	w, body := suite.request(http.MethodGet, "/api/v1/users/me/activity-status", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["show_activity_status"])

	off := false
	w, _ = suite.request(http.MethodPut, "/api/v1/users/me/activity-status", user.ID,
		map[string]*bool{"show_activity_status": &off})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = suite.request(http.MethodGet, "/api/v1/users/me/activity-status", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["show_activity_status"])
}
