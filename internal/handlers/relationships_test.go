package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relationshipRouter(env *testEnv, userID string) *gin.Engine {
	r := newTestRouter()
	r.Use(fakeAuth(userID, "user"))
	handler := NewRelationshipHandler(env.likes, env.blocks)
	r.POST("/likes", handler.Like)
	r.DELETE("/likes/:profile_id", handler.Unlike)
	r.GET("/likes/received", handler.WhoLikedMe)
	r.GET("/likes/count", handler.LikeCount)
	r.POST("/blocks", handler.Block)
	r.DELETE("/blocks/:profile_id", handler.Unblock)
	r.GET("/blocks", handler.BlockedUsers)
	return r
}

func TestLikeEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")
	router := relationshipRouter(env, "u1")

	rec := doRequest(router, http.MethodPost, "/likes", `{"profile_id":"u2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["like_id"])
	assert.Equal(t, false, resp["is_mutual"])
}

func TestLikeSelfRejectedEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	router := relationshipRouter(env, "u1")

	rec := doRequest(router, http.MethodPost, "/likes", `{"profile_id":"u1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLikeMissingBody(t *testing.T) {
	env := newTestEnv()
	router := relationshipRouter(env, "u1")

	rec := doRequest(router, http.MethodPost, "/likes", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutualLikeEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")

	rec := doRequest(relationshipRouter(env, "u2"), http.MethodPost, "/likes", `{"profile_id":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(relationshipRouter(env, "u1"), http.MethodPost, "/likes", `{"profile_id":"u2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["is_mutual"])
}

func TestUnlikeEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")
	router := relationshipRouter(env, "u1")

	rec := doRequest(router, http.MethodPost, "/likes", `{"profile_id":"u2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodDelete, "/likes/u2", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(router, http.MethodGet, "/likes/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWhoLikedMeEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")

	rec := doRequest(relationshipRouter(env, "u2"), http.MethodPost, "/likes", `{"profile_id":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(relationshipRouter(env, "u1"), http.MethodGet, "/likes/received", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Likes []struct {
			FromUserID string `json:"from_user_id"`
		} `json:"likes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Likes, 1)
	assert.Equal(t, "u2", resp.Likes[0].FromUserID)
}

func TestBlockAndUnblockEndpoints(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")
	router := relationshipRouter(env, "u1")

	rec := doRequest(router, http.MethodPost, "/blocks", `{"profile_id":"u2","reason":"spam"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(router, http.MethodGet, "/blocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Blocked []string `json:"blocked"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"u2"}, resp.Blocked)

	rec = doRequest(router, http.MethodDelete, "/blocks/u2", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(router, http.MethodGet, "/blocks", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Blocked)
}

func TestBlockSelfRejectedEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	router := relationshipRouter(env, "u1")

	rec := doRequest(router, http.MethodPost, "/blocks", `{"profile_id":"u1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
