// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/respond"
)

func TestError_LogsWithRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	request := httptest.NewRequest(http.MethodGet, "/files", nil)
	ctx := ctxutil.WithLogger(request.Context(), logger)
	ctx = ctxutil.WithRequestID(ctx, "req-42")
	request = request.WithContext(ctx)
	recorder := httptest.NewRecorder()

	respond.Error(recorder, request, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "disk on fire")
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
	assert.Contains(t, logs.String(), "unhandled_error_swallowed")
}

func TestError_AppError(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/files", nil)
	recorder := httptest.NewRecorder()

	respond.Error(recorder, request, apperr.NotFound("File"))

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestGraphQLError_CarriesWireCode(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.GraphQLError(recorder, http.StatusRequestEntityTooLarge, apperr.QueryTooLarge(2000))

	var envelope respond.GraphQLErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "413", envelope.Errors[0].Extensions["code"])
}
