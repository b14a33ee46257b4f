package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID"), "role": c.GetString("role")})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := authRouter()

	rec := get(router, "/me", "Bearer "+signToken(t, "u1", "user"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
}

func TestAuthMiddlewareRejectsBadRequests(t *testing.T) {
	router := authRouter()

	rec := get(router, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(router, "/me", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(router, "/me", "Token "+signToken(t, "u1", "user"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A token signed with a different secret is rejected.
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	forged, err := other.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	rec = get(router, "/me", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMissingSubject(t *testing.T) {
	router := authRouter()

	rec := get(router, "/me", "Bearer "+signToken(t, "", "user"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	router := authRouter()

	rec := get(router, "/admin", "Bearer "+signToken(t, "u1", "user"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = get(router, "/admin", "Bearer "+signToken(t, "mod1", "admin"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = TokenFromHeader("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = TokenFromHeader("abc")
	assert.Error(t, err)
}
