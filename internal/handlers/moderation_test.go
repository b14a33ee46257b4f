package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawadda-service/internal/middleware"
)

func moderationRouter(env *testEnv, userID, role string) *gin.Engine {
	r := newTestRouter()
	r.Use(fakeAuth(userID, role))
	handler := NewModerationHandler(env.moderation)

	admin := r.Group("/admin", middleware.RequireAdmin())
	admin.POST("/moderation", handler.Apply)
	admin.GET("/moderation/:user_id", handler.History)
	admin.POST("/moderation/reinstate", handler.ReinstateExpired)
	return r
}

func TestModerationEndpointRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	rec := doRequest(moderationRouter(env, "u1", "user"), http.MethodPost, "/admin/moderation",
		`{"user_id":"u2","action":"warning","reason":"spam"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestModerationApplyAndHistory(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	admin := moderationRouter(env, "mod1", "admin")

	rec := doRequest(admin, http.MethodPost, "/admin/moderation",
		`{"user_id":"u1","action":"warning","reason":"spam","notes":"first offence"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ActionID string `json:"action_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ActionID)

	rec = doRequest(admin, http.MethodGet, "/admin/moderation/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Actions []struct {
			ActionType string `json:"action_type"`
			Reason     string `json:"reason"`
		} `json:"actions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history.Actions, 1)
	assert.Equal(t, "warning", history.Actions[0].ActionType)
	assert.Equal(t, "spam", history.Actions[0].Reason)
}

func TestModerationApplyValidation(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	admin := moderationRouter(env, "mod1", "admin")

	// Suspension without a duration is rejected.
	rec := doRequest(admin, http.MethodPost, "/admin/moderation",
		`{"user_id":"u1","action":"suspension","reason":"spam"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown action type is rejected.
	rec = doRequest(admin, http.MethodPost, "/admin/moderation",
		`{"user_id":"u1","action":"shadowban","reason":"spam"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown user is a 404.
	rec = doRequest(admin, http.MethodPost, "/admin/moderation",
		`{"user_id":"ghost","action":"warning","reason":"spam"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModerationReinstateEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	admin := moderationRouter(env, "mod1", "admin")

	rec := doRequest(admin, http.MethodPost, "/admin/moderation/reinstate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Reinstated int `json:"reinstated"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Zero(t, resp.Reinstated)
}
