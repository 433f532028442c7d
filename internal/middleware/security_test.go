package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("api.foodieshare.app")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "API.foodieshare.app:443"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.Host = "evil.example.com"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	HostCheck("")(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	h := LoginRateLimit()(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/auth/login"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/auth/reset-password/abc"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Non-credential routes are not counted.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/user/u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGlobalRateLimit_Burst(t *testing.T) {
	h := GlobalRateLimit()(okHandler)

	blocked := 0
	for i := 0; i < 30; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1", "/"))
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Greater(t, blocked, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.9", "/"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssistantRateLimit_PerUser(t *testing.T) {
	h := AssistantRateLimit()(okHandler)

	send := func(uid string) int {
		req := requestFrom("10.0.0.1", "/api/assistant/chat")
		req = req.WithContext(WithUser(req.Context(), AuthUser{ID: uid}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < assistantBurst; i++ {
		assert.Equal(t, http.StatusOK, send("u1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	// Same address, different account.
	assert.Equal(t, http.StatusOK, send("u2"))
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Something went wrong!"}`, rec.Body.String())
}
