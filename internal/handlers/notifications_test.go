package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationRouter(env *testEnv, userID string) *gin.Engine {
	r := newTestRouter()
	r.Use(fakeAuth(userID, "user"))
	handler := NewNotificationHandler(env.notifications)
	r.GET("/notifications", handler.List)
	r.POST("/notifications/:notification_id/read", handler.MarkRead)
	r.GET("/notifications/unread-count", handler.UnreadCount)
	return r
}

func TestNotificationFeedEndpoints(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")
	env.notifications.LikeReceived(context.Background(), "u2", "u1")
	router := notificationRouter(env, "u1")

	rec := doRequest(router, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var feed struct {
		Notifications []struct {
			ID     string `json:"id"`
			Type   string `json:"type"`
			IsRead bool   `json:"is_read"`
		} `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&feed))
	require.Len(t, feed.Notifications, 1)
	assert.False(t, feed.Notifications[0].IsRead)

	rec = doRequest(router, http.MethodGet, "/notifications/unread-count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var count struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&count))
	assert.Equal(t, 1, count.Count)

	rec = doRequest(router, http.MethodPost, "/notifications/"+feed.Notifications[0].ID+"/read", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(router, http.MethodGet, "/notifications/unread-count", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&count))
	assert.Zero(t, count.Count)
}
