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

func reportRouter(env *testEnv, userID, role string) *gin.Engine {
	r := newTestRouter()
	r.Use(fakeAuth(userID, role))
	handler := NewReportHandler(env.reports, nil)
	r.POST("/reports/profile", handler.ReportProfile)
	r.POST("/reports/message", handler.ReportMessage)

	admin := r.Group("/admin", middleware.RequireAdmin())
	admin.GET("/reports", handler.ListPending)
	admin.POST("/reports/:report_id/review", handler.Review)
	return r
}

func TestReportProfileEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")

	rec := doRequest(reportRouter(env, "u1", "user"), http.MethodPost, "/reports/profile",
		`{"profile_id":"u2","reason":"fake_profile","reason_arabic":"حساب مزيف"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ReportID string `json:"report_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ReportID)
}

func TestReportProfileValidation(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	router := reportRouter(env, "u1", "user")

	// Missing reason fails binding.
	rec := doRequest(router, http.MethodPost, "/reports/profile", `{"profile_id":"u2"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Reporting yourself is rejected.
	rec = doRequest(router, http.MethodPost, "/reports/profile", `{"profile_id":"u1","reason":"spam"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown target is a 404.
	rec = doRequest(router, http.MethodPost, "/reports/profile", `{"profile_id":"ghost","reason":"spam"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportMessageEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")
	convID := startConversation(t, env, "u1", "u2")

	rec := doRequest(conversationRouter(env, "u1"), http.MethodPost, "/conversations/"+convID+"/messages", `{"text":"inappropriate"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var msg struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))

	body, _ := json.Marshal(map[string]string{
		"conversation_id": convID,
		"message_id":      msg.ID,
		"reason":          "harassment",
	})
	rec = doRequest(reportRouter(env, "u2", "user"), http.MethodPost, "/reports/message", string(body))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestReviewEndpointRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	router := reportRouter(env, "u1", "user")

	rec := doRequest(router, http.MethodGet, "/admin/reports", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, http.MethodPost, "/admin/reports/r1/review", `{"status":"dismissed"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewEndpointAppliesAction(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "u1", "A")
	env.seedUser(t, "u2", "B")

	rec := doRequest(reportRouter(env, "u1", "user"), http.MethodPost, "/reports/profile",
		`{"profile_id":"u2","reason":"harassment"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var filed struct {
		ReportID string `json:"report_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&filed))

	admin := reportRouter(env, "mod1", "admin")

	rec = doRequest(admin, http.MethodGet, "/admin/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending struct {
		Reports []struct {
			ID string `json:"id"`
		} `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	require.Len(t, pending.Reports, 1)

	rec = doRequest(admin, http.MethodPost, "/admin/reports/"+filed.ReportID+"/review",
		`{"status":"resolved","action":"warning","admin_notes":"verified"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The queue is empty and the warning landed on the reported user.
	rec = doRequest(admin, http.MethodGet, "/admin/reports", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	assert.Empty(t, pending.Reports)

	rec = doRequest(admin, http.MethodPost, "/admin/reports/"+filed.ReportID+"/review", `{"status":"weird"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
