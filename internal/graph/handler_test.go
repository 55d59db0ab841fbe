// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/graph"
)

type graphResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func newHandler(t *testing.T, f *fixture, options graph.HandlerOptions) http.Handler {
	t.Helper()
	builder := authz.NewSessionBuilder(tokenTable{"good": ada})
	return graph.NewHandler(f.schema, builder, options)
}

// serve runs request against handler with session attached, the way the
// Authenticate middleware does.
func serve(handler http.Handler, request *http.Request, session *authz.Session) graphResponse {
	request = request.WithContext(authz.WithSession(request.Context(), session))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var response graphResponse
	_ = json.Unmarshal(recorder.Body.Bytes(), &response)
	return response
}

func postJSON(body string) *http.Request {
	request := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	return request
}

func TestHandler_Post(t *testing.T) {
	f := newFixture(t, defaultGuard)
	handler := newHandler(t, f, graph.HandlerOptions{})

	response := serve(handler, postJSON(`{"query":"{ users { email } }"}`), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})

	require.Empty(t, response.Errors)
	assert.Len(t, response.Data["users"], 2)
}

func TestHandler_Get(t *testing.T) {
	f := newFixture(t, defaultGuard)
	handler := newHandler(t, f, graph.HandlerOptions{})

	query := url.Values{"query": {`query Who($id: String!) { user(_id: $id) { email } }`}, "variables": {`{"id":"u-grace"}`}}
	request := httptest.NewRequest(http.MethodGet, "/graphql?"+query.Encode(), nil)

	response := serve(handler, request, &authz.Session{CurrentUser: ada, CurrentSite: "s1"})

	require.Empty(t, response.Errors)
	assert.Equal(t, map[string]interface{}{"email": grace.Email}, response.Data["user"])
}

func TestHandler_AnonymousGetsCodes(t *testing.T) {
	f := newFixture(t, defaultGuard)
	handler := newHandler(t, f, graph.HandlerOptions{})

	response := serve(handler, postJSON(`{"query":"{ hello users { _id } }"}`), &authz.Session{})

	require.Len(t, response.Errors, 1)
	assert.Equal(t, "498", response.Errors[0].Extensions["code"])
	assert.NotEmpty(t, response.Data["hello"])
	assert.Nil(t, response.Data["users"])
}

func TestHandler_RejectsSubscriptionOverHTTP(t *testing.T) {
	f := newFixture(t, defaultGuard)
	handler := newHandler(t, f, graph.HandlerOptions{})

	response := serve(handler, postJSON(`{"query":"subscription { userCreated { _id } }"}`), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})

	require.Len(t, response.Errors, 1)
	assert.Equal(t, "Subscriptions require a WebSocket connection", response.Errors[0].Message)
	assert.Equal(t, "400", response.Errors[0].Extensions["code"])
}

func TestHandler_PersistedQueries(t *testing.T) {
	f := newFixture(t, defaultGuard)
	handler := newHandler(t, f, graph.HandlerOptions{Persisted: graph.NewPersistedQueries(10, time.Minute)})

	query := "{ hello }"
	sum := sha256.Sum256([]byte(query))
	hash := hex.EncodeToString(sum[:])
	extensions := `"extensions":{"persistedQuery":{"version":1,"sha256Hash":"` + hash + `"}}`

	response := serve(handler, postJSON(`{`+extensions+`}`), &authz.Session{})
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "PersistedQueryNotFound", response.Errors[0].Message)
	assert.Equal(t, "PERSISTED_QUERY_NOT_FOUND", response.Errors[0].Extensions["kind"])

	response = serve(handler, postJSON(`{"query":"`+query+`",`+extensions+`}`), &authz.Session{})
	require.Empty(t, response.Errors)

	response = serve(handler, postJSON(`{`+extensions+`}`), &authz.Session{})
	require.Empty(t, response.Errors)
	assert.NotEmpty(t, response.Data["hello"])

	mismatch := `"extensions":{"persistedQuery":{"version":1,"sha256Hash":"deadbeef"}}`
	response = serve(handler, postJSON(`{"query":"`+query+`",`+mismatch+`}`), &authz.Session{})
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "400", response.Errors[0].Extensions["code"])
}

func TestHandler_Playground(t *testing.T) {
	f := newFixture(t, defaultGuard)

	t.Run("enabled", func(t *testing.T) {
		handler := newHandler(t, f, graph.HandlerOptions{Playground: true})
		request := httptest.NewRequest(http.MethodGet, "/graphql", nil)
		request.Header.Set("Accept", "text/html")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, recorder.Body.String(), "graphiql")
	})

	t.Run("disabled", func(t *testing.T) {
		handler := newHandler(t, f, graph.HandlerOptions{Playground: false})
		request := httptest.NewRequest(http.MethodGet, "/graphql", nil)
		request.Header.Set("Accept", "text/html")

		response := serve(handler, request, &authz.Session{})

		require.Len(t, response.Errors, 1)
		assert.Equal(t, "Must provide query string", response.Errors[0].Message)
	})
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, defaultGuard)
	handler := newHandler(t, f, graph.HandlerOptions{})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/graphql", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}
