package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type resolverStub struct {
	user model.User
	err  error
}

func (r resolverStub) CurrentUser(_ context.Context, token string) (model.User, error) {
	if r.err != nil {
		return model.User{}, r.err
	}
	if token != "good" {
		return model.User{}, customErrors.ErrUnauthorized
	}
	return r.user, nil
}

func authRouter(res UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireUser(res, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})
	return r
}

func get(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUser(t *testing.T) {
	r := authRouter(resolverStub{user: model.User{Email: "a@b.io"}})

	w := get(r, "/me", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a@b.io", w.Body.String())

	w = get(r, "/me", "bearer good")
	require.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"detail":"Not authenticated"}`, w.Body.String())

	w = get(r, "/me", "Basic Zm9vOmJhcg==")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", "Bearer bad")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"detail":"Could not validate credentials"}`, w.Body.String())
}

func TestRequireUser_InternalError(t *testing.T) {
	r := authRouter(resolverStub{err: customErrors.WrapInternal(context.DeadlineExceeded, "db")})

	w := get(r, "/me", "Bearer good")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestLogger_RedactsAndTags(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := get(r, "/", "Bearer secret-token")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))

	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		for _, f := range e.Context {
			if f.Key == "hdr" {
				require.NotContains(t, f.Interface.(map[string]string)["Authorization"], "secret-token")
			}
		}
	}
	require.Equal(t, "completed", logs.All()[1].Message)
}

func TestRequestLogger_KeepsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)
	require.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	get(r, "/ping", "")
	get(r, "/missing", "")

	w := get(r, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body, `contacts_http_requests_total{method="GET",route="/ping",status="200"} 1`), body)
	require.Contains(t, body, `route="unmatched",status="404"`)
	require.Contains(t, body, "contacts_http_request_duration_seconds")
}
