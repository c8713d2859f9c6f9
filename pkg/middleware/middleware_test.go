package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", NewRequestIDMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 10)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

type fakeResolver struct {
	users map[string]*model.User
	err   error
}

func (f *fakeResolver) CurrentUser(_ context.Context, secret string) (*model.User, error) {
	return f.users[secret], f.err
}

func TestSessionMiddleware(t *testing.T) {
	res := &fakeResolver{users: map[string]*model.User{"good": {ID: "u1"}}}

	handler := func(c *gin.Context) {
		u := User(c)
		if u == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}

		c.String(http.StatusOK, c.GetString("userID"))
	}

	r := gin.New()
	r.GET("/required", NewSessionMiddleware(res, "session", true), handler)
	r.GET("/optional", NewSessionMiddleware(res, "session", false), handler)

	withCookie := func(path, secret string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if secret != "" {
			req.AddCookie(&http.Cookie{Name: "session", Value: secret})
		}
		return req
	}

	w := serve(r, withCookie("/required", "good"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = serve(r, withCookie("/required", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, withCookie("/required", "forged"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, withCookie("/optional", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	res.err = errors.New("db down")
	w = serve(r, withCookie("/optional", "good"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/", BodySizeLimiter(4), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2, TTL: time.Minute})

	r := gin.New()
	r.GET("/", l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	assert.Zero(t, l.Sweep(time.Now()))
	assert.Equal(t, 1, l.Sweep(time.Now().Add(2*time.Minute)))
}

func TestTurnstile(t *testing.T) {
	success := true
	verify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if success {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer verify.Close()

	r := gin.New()
	r.POST("/", NewTurnstileMiddleware(TurnstileConfig{
		Enabled:   true,
		Secret:    "secret",
		VerifyURL: verify.URL,
	}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if token != "" {
			req.Header.Set("TurnstileToken", token)
		}
		return req
	}

	assert.Equal(t, http.StatusBadRequest, serve(r, req("")).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, req("token")).Code)

	success = false
	assert.Equal(t, http.StatusUnauthorized, serve(r, req("token")).Code)

	disabled := gin.New()
	disabled.POST("/", NewTurnstileMiddleware(TurnstileConfig{}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	require.Equal(t, http.StatusNoContent, serve(disabled, req("")).Code)
}
