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

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/internal/jobs/push-reminders/run", TriggerAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func signTriggerToken(t *testing.T, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "scheduler",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTriggerAuthAcceptsValidToken(t *testing.T) {
	r := newAuthRouter("secret-1")

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/push-reminders/run", nil)
	req.Header.Set("Authorization", "Bearer "+signTriggerToken(t, "secret-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTriggerAuthRejectsMissingHeader(t *testing.T) {
	r := newAuthRouter("secret-1")

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/push-reminders/run", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTriggerAuthRejectsWrongSecret(t *testing.T) {
	r := newAuthRouter("secret-1")

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/push-reminders/run", nil)
	req.Header.Set("Authorization", "Bearer "+signTriggerToken(t, "other-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTriggerAuthRejectsMalformedHeader(t *testing.T) {
	r := newAuthRouter("secret-1")

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/push-reminders/run", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
