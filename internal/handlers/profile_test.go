package handlers

import (
	"net/http"

	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestGetMe() {
	t := suite.T()
	user := suite.makeUser("me", true)

	w, body := suite.request(http.MethodGet, "/api/v1/users/me", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.Username, body["username"])
	// Sensitive fields never serialize
	assert.NotContains(t, w.Body.String(), "password_hash")
	assert.NotContains(t, w.Body.String(), "two_factor_secret")
}

func (suite *HandlersTestSuite) TestGetUserProfileServedFromCache() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	bob := suite.makeUser("bob", true)

	w, body := suite.request(http.MethodGet, "/api/v1/users/"+bob.ID+"/profile", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, bob.Username, body["username"])

	// The cached copy survives a direct DB write until invalidated
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", bob.ID).
		UpdateColumn("display_name", "changed behind the cache").Error)

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+bob.ID+"/profile", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", body["display_name"])
}

func (suite *HandlersTestSuite) TestUpdateProfileInvalidatesCache() {
	t := suite.T()
	alice := suite.makeUser("alice", true)
	bob := suite.makeUser("bob", true)

	// Warm the cache
	suite.request(http.MethodGet, "/api/v1/users/"+bob.ID+"/profile", alice.ID, nil)

	w, body := suite.request(http.MethodPut, "/api/v1/users/me", bob.ID,
		map[string]string{"display_name": "Bobby", "bio": "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bobby", body["display_name"])

	w, body = suite.request(http.MethodGet, "/api/v1/users/"+bob.ID+"/profile", alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bobby", body["display_name"])
	assert.Equal(t, "hello", body["bio"])
}

func (suite *HandlersTestSuite) TestUpdateProfileValidation() {
	t := suite.T()
	user := suite.makeUser("user", true)

	// Empty display name is a validation error
	w, _ := suite.request(http.MethodPut, "/api/v1/users/me", user.ID,
		map[string]string{"display_name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// No fields at all is a bad request
	w, _ = suite.request(http.MethodPut, "/api/v1/users/me", user.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestPrivacySettingsRoundTrip() {
	t := suite.T()
	user := suite.makeUser("user", true)

	w, body := suite.request(http.MethodGet, "/api/v1/users/me/privacy", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_public"])

	private := false
	approval := true
	w, _ = suite.request(http.MethodPut, "/api/v1/users/me/privacy", user.ID, map[string]interface{}{
		"is_public":               &private,
		"require_follow_approval": &approval,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = suite.request(http.MethodGet, "/api/v1/users/me/privacy", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["is_public"])
	assert.Equal(t, true, body["require_follow_approval"])

	// Flipping private takes effect on the next follow attempt
	other := suite.makeUser("other", true)
	w, body = suite.request(http.MethodPost, "/api/v1/users/"+user.ID+"/follow", other.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["requested"])
}

func (suite *HandlersTestSuite) TestPrivacySettingsRejectBadPermission() {
	t := suite.T()
	user := suite.makeUser("user", true)

	perm := "friends-of-friends"
	w, _ := suite.request(http.MethodPut, "/api/v1/users/me/privacy", user.ID, map[string]interface{}{
		"comment_permission": &perm,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
