// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"unicode/utf8"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/respond"
)

// MaxBodyBytes caps GraphQL request bodies.
const MaxBodyBytes = 10 << 20

// # Query Size Guard

// QuerySizeLimit rejects GraphQL requests whose document is longer than
// maxLength characters, before anything is parsed or executed.
//
// The query is read from the URL and, on POST, from the body: the "query"
// member of a JSON body or the whole body for application/graphql. The body
// is restored afterwards so the GraphQL handler can decode it again.
func QuerySizeLimit(maxLength int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if maxLength <= 0 || IsWebSocketUpgrade(request) {
				next.ServeHTTP(writer, request)
				return
			}

			length := utf8.RuneCountInString(request.URL.Query().Get("query"))

			if request.Body != nil && request.Method == http.MethodPost {
				body, err := io.ReadAll(io.LimitReader(request.Body, MaxBodyBytes+1))
				_ = request.Body.Close()
				if err != nil {
					respond.GraphQLError(writer, http.StatusBadRequest, apperr.ValidationError("Unreadable request body"))
					return
				}
				if len(body) > MaxBodyBytes {
					respond.GraphQLError(writer, http.StatusRequestEntityTooLarge, apperr.QueryTooLarge(maxLength))
					return
				}
				request.Body = io.NopCloser(bytes.NewReader(body))

				length = max(length, utf8.RuneCountInString(bodyQuery(request, body)))
			}

			if length > maxLength {
				ctxutil.GetLogger(request.Context()).Warn("query_too_large",
					slog.Int("length", length),
					slog.Int("limit", maxLength),
				)
				respond.GraphQLError(writer, http.StatusRequestEntityTooLarge, apperr.QueryTooLarge(maxLength))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// bodyQuery extracts the document the GraphQL handler will execute from body.
func bodyQuery(request *http.Request, body []byte) string {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "application/graphql" {
		return string(body)
	}

	var payload struct {
		Query string `json:"query"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Query
}
