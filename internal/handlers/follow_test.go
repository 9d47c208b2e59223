package handlers

import (
	"net/http"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestFollowPublicUser() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	bob := suite.makeUser("bob", true)

	w, body := suite.request(http.MethodPost, "/api/v1/users/"+bob.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["following"])
	assert.Equal(t, false, body["requested"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+bob.ID+"/follow-status", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["following"])
}

func (suite *HandlersTestSuite) TestFollowRequiresAuth() {
	t := suite.T()
	bob := suite.makeUser("bob", true)

	w, _ := suite.request(http.MethodPost, "/api/v1/users/"+bob.ID+"/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestFollowSelfRejected() {
	t := suite.T()
	alice := suite.makeUser("alice", true)

	w, _ := suite.request(http.MethodPost, "/api/v1/users/"+alice.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestFollowUnknownUser() {
	t := suite.T()
	alice := suite.makeUser("alice", true)

	w, _ := suite.request(http.MethodPost,
		"/api/v1/users/00000000-0000-0000-0000-000000000000/follow", alice.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDoubleFollowConflicts() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	bob := suite.makeUser("bob", true)

	w, _ := suite.request(http.MethodPost, "/api/v1/users/"+bob.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodPost, "/api/v1/users/"+bob.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestFollowPrivateUserFilesRequest() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	priv := suite.makeUser("priv", false)

	w, body := suite.request(http.MethodPost, "/api/v1/users/"+priv.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["following"])
	assert.Equal(t, true, body["requested"])

	// Target sees it in their inbox
	w, body = suite.request(http.MethodGet, "/api/v1/users/me/follow-requests", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/me/follow-requests/count", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
}

func (suite *HandlersTestSuite) TestAcceptFollowRequestFlow() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	priv := suite.makeUser("priv", false)

	suite.request(http.MethodPost, "/api/v1/users/"+priv.ID+"/follow", alice.ID, nil)

	var request models.FollowRequest
	require.NoError(t, database.DB.First(&request).Error)

	// Only the target may accept
	w, _ := suite.request(http.MethodPost, "/api/v1/follow-requests/"+request.ID+"/accept", alice.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := suite.request(http.MethodPost, "/api/v1/follow-requests/"+request.ID+"/accept", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", body["status"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+priv.ID+"/follow-status", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["following"])

	// Accepting a resolved request is NotFound
	w, _ = suite.request(http.MethodPost, "/api/v1/follow-requests/"+request.ID+"/accept", priv.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestRejectFollowRequestFlow() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	priv := suite.makeUser("priv", false)

	suite.request(http.MethodPost, "/api/v1/users/"+priv.ID+"/follow", alice.ID, nil)

	var request models.FollowRequest
	require.NoError(t, database.DB.First(&request).Error)

	w, body := suite.request(http.MethodPost, "/api/v1/follow-requests/"+request.ID+"/reject", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", body["status"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+priv.ID+"/follow-status", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["following"])
	assert.Equal(t, false, body["requested"])
}

func (suite *HandlersTestSuite) TestCancelFollowRequestFlow() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	priv := suite.makeUser("priv", false)

	suite.request(http.MethodPost, "/api/v1/users/"+priv.ID+"/follow", alice.ID, nil)

	var request models.FollowRequest
	require.NoError(t, database.DB.First(&request).Error)

	// The target cannot cancel the requester's request
	w, _ := suite.request(http.MethodDelete, "/api/v1/follow-requests/"+request.ID, priv.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := suite.request(http.MethodDelete, "/api/v1/follow-requests/"+request.ID, alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", body["status"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/me/follow-requests/count", priv.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
}

func (suite *HandlersTestSuite) TestUnfollowFlow() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	bob := suite.makeUser("bob", true)

	suite.request(http.MethodPost, "/api/v1/users/"+bob.ID+"/follow", alice.ID, nil)

	w, body := suite.request(http.MethodDelete, "/api/v1/users/"+bob.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["following"])

	w, _ = suite.request(http.MethodDelete, "/api/v1/users/"+bob.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestFollowersAndFollowingLists() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	bob := suite.makeUser("bob", true)
	carol := suite.makeUser("carol", true)

	suite.request(http.MethodPost, "/api/v1/users/"+carol.ID+"/follow", alice.ID, nil)
	suite.request(http.MethodPost, "/api/v1/users/"+carol.ID+"/follow", bob.ID, nil)

	w, body := suite.request(http.MethodGet, "/api/v1/users/"+carol.ID+"/followers", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+alice.ID+"/following", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
}
