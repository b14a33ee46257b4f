package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"mawadda-service/internal/models"
	"mawadda-service/internal/rabbitmq"
	"mawadda-service/internal/services"
	"mawadda-service/internal/store"
	"mawadda-service/internal/ws"
)

type testEnv struct {
	db            *store.MemStore
	people        *services.PeopleService
	likes         *services.LikeService
	blocks        *services.BlockService
	conversations *services.ConversationService
	notifications *services.NotificationService
	reports       *services.ReportService
	moderation    *services.ModerationService
	hub           *ws.Hub
}

func newTestEnv() *testEnv {
	db := store.NewMemStore()
	notifications := services.NewNotificationService(db, rabbitmq.NewPublisher("", ""))
	moderation := services.NewModerationService(db, notifications, nil)
	return &testEnv{
		db:            db,
		people:        services.NewPeopleService(db),
		likes:         services.NewLikeService(db, nil, notifications),
		blocks:        services.NewBlockService(db, nil),
		conversations: services.NewConversationService(db, notifications),
		notifications: notifications,
		reports:       services.NewReportService(db, moderation),
		moderation:    moderation,
		hub:           ws.NewHub(),
	}
}

func (e *testEnv) seedUser(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.db.Set(context.Background(), models.UsersCollection, id, models.UserRecord{
		ProfileData: map[string]any{
			"displayName":      name,
			"profileCompleted": true,
		},
	}.Fields()))
}

// fakeAuth stands in for the JWT middleware in handler tests.
func fakeAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
