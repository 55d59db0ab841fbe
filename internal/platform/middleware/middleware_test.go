// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/constants"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/users/account"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("propagated", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "abc-123")
		handler.ServeHTTP(httptest.NewRecorder(), request)
		assert.Equal(t, "abc-123", seen)
	})
}

// hijackableRecorder is an httptest recorder that also satisfies http.Hijacker.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (recorder *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	recorder.hijacked = true
	server, client := net.Pipe()
	_ = client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

/*
TestStructuredLogger_KeepsHijacker verifies that WebSocket upgrades still reach
the underlying connection through the logging wrapper.
*/
func TestStructuredLogger_KeepsHijacker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := StructuredLogger(logger)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		hijacker, ok := writer.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hijacker.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))

	recorder := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.True(t, recorder.hijacked)
}

func TestStructuredLogger_LogsCallerIdentity(t *testing.T) {
	var output bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&output, nil))
	session := &authz.Session{CurrentUser: &account.User{ID: "user-1"}, CurrentSite: "site-1"}

	handler := StructuredLogger(logger)(Authenticate(stubBuilder{session: session})(okHandler))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/graphql", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	assert.Equal(t, "http_request_finished", entry["msg"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "site-1", entry["site_id"])
}

func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestMemoryLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewMemoryLimiter(ctx, 2, time.Minute)
	handler := RateLimit(limiter)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
		if recorder.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, recorder.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// Another client has its own bucket.
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRedisLimiter(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	limiter := NewRedisLimiter(client, constants.RedisPrefixRateLimit, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// The window expires and the counter restarts.
	server.FastForward(time.Minute + time.Second)
	allowed, _, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()
	server.Close()

	handler := RateLimit(NewRedisLimiter(client, "rl", 1, time.Minute))(okHandler)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestQuerySizeLimit(t *testing.T) {
	var forwarded string
	handler := QuerySizeLimit(20)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		forwarded = string(body)
	}))

	tests := []struct {
		name     string
		request  func() *http.Request
		wantCode int
	}{
		{
			name: "small_post",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
			},
			wantCode: http.StatusOK,
		},
		{
			name: "large_post",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ users { _id email firstName } }"}`))
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
		{
			name: "small_graphql_body",
			request: func() *http.Request {
				request := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ hello }`))
				request.Header.Set("Content-Type", "application/graphql")
				return request
			},
			wantCode: http.StatusOK,
		},
		{
			name: "large_graphql_body",
			request: func() *http.Request {
				request := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ users { _id email firstName lastName gender } }`))
				request.Header.Set("Content-Type", "application/graphql; charset=utf-8")
				return request
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
		{
			name: "small_url_query_large_body",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/graphql?query=%7B+hello+%7D", strings.NewReader(`{"query":"{ users { _id email firstName } }"}`))
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
		{
			name: "large_get",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/graphql?query=%7B+users+%7B+_id+email+firstName+%7D+%7D", nil)
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forwarded = ""
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, tt.request())
			assert.Equal(t, tt.wantCode, recorder.Code)

			if tt.wantCode != http.StatusOK {
				var envelope struct {
					Errors []struct {
						Message    string            `json:"message"`
						Extensions map[string]string `json:"extensions"`
					} `json:"errors"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
				require.Len(t, envelope.Errors, 1)
				assert.Contains(t, envelope.Errors[0].Message, "Query too large")
				assert.Equal(t, "413", envelope.Errors[0].Extensions["code"])
				assert.Empty(t, forwarded)
			}
		})
	}

	// The body is restored for the downstream handler.
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`)))
	assert.Equal(t, `{"query":"{ hello }"}`, forwarded)
}

func TestSkipWebSocket(t *testing.T) {
	wrapped := 0
	wrap := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			wrapped++
			next.ServeHTTP(writer, request)
		})
	}
	handler := SkipWebSocket(wrap)(okHandler)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graphql", nil))

	upgrade := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	upgrade.Header.Set("Connection", "keep-alive, Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	handler.ServeHTTP(httptest.NewRecorder(), upgrade)

	assert.Equal(t, 1, wrapped)
}

func TestSecureHeaders(t *testing.T) {
	recorder := httptest.NewRecorder()
	SecureHeaders(true)(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, recorder.Header().Get("Strict-Transport-Security"))
}

type corsConfig struct{ development bool }

func (config corsConfig) IsDevelopment() bool      { return config.development }
func (config corsConfig) AllowedOrigins() []string { return []string{"https://admin.sitegraph.dev"} }

func TestCORS(t *testing.T) {
	handler := CORS(corsConfig{})(okHandler)

	allowed := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	allowed.Header.Set("Origin", "https://admin.sitegraph.dev")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, allowed)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://admin.sitegraph.dev", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Headers"), "currentsite")

	denied := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	denied.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, denied)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

type stubBuilder struct{ session *authz.Session }

func (builder stubBuilder) FromHTTP(*http.Request) *authz.Session { return builder.session }

type stubGuard struct{ err error }

func (guard stubGuard) RequirePermission(context.Context, string) error { return guard.err }

func TestAuthenticate_AttachesSession(t *testing.T) {
	session := &authz.Session{CurrentUser: &account.User{ID: "user-1"}, CurrentSite: "site-1"}

	var seen *authz.Session
	var identity ctxutil.Identity
	handler := Authenticate(stubBuilder{session: session})(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = authz.SessionFrom(request.Context())
		identity = ctxutil.GetIdentity(request.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/graphql", nil))
	assert.Same(t, session, seen)
	assert.Equal(t, ctxutil.Identity{UserID: "user-1", SiteID: "site-1"}, identity)
}

func TestRequirePermission(t *testing.T) {
	t.Run("denied", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		RequirePermission(stubGuard{err: apperr.Unauthorized("Unauthorized")}, "FILE_UPLOAD")(okHandler).
			ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/files", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("granted", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		RequirePermission(stubGuard{}, "FILE_UPLOAD")(okHandler).
			ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/files", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

type httpSample struct {
	method string
	route  string
	status int
}

type httpSamples []httpSample

func (samples *httpSamples) ObserveHTTP(method, route string, status int, _ time.Duration) {
	*samples = append(*samples, httpSample{method: method, route: route, status: status})
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	var samples httpSamples
	router := chi.NewRouter()
	router.Use(Instrument(&samples))
	router.Get("/graphql/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graphql/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Len(t, samples, 2)
	assert.Equal(t, httpSample{method: "GET", route: "/graphql/{id}", status: http.StatusTeapot}, samples[0])
	assert.Equal(t, http.StatusNotFound, samples[1].status)
}
