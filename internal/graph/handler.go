// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/location"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/respond"
)

// maxBodyBytes caps GraphQL request bodies.
const maxBodyBytes = 10 << 20

// Request is one GraphQL operation as sent over HTTP or WebSocket.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
	Extensions    map[string]interface{} `json:"extensions"`
}

// Observer records transport metrics. [metrics.Metrics] implements it.
type Observer interface {
	ObserveOperation(operation string, failed bool)
	ConnectionOpened()
	ConnectionClosed()
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, bool) {}
func (noopObserver) ConnectionOpened()             {}
func (noopObserver) ConnectionClosed()             {}

// HandlerOptions configures [NewHandler].
type HandlerOptions struct {
	// Playground serves GraphiQL on a plain browser GET.
	Playground bool
	// Persisted enables automatic persisted queries. Nil disables them.
	Persisted *PersistedQueries
	// MaxQueryLength applies the query-size guard to WebSocket operations.
	// HTTP requests are checked by middleware.QuerySizeLimit.
	MaxQueryLength int
	// CheckOrigin validates WebSocket upgrades. Nil accepts every origin.
	CheckOrigin func(request *http.Request) bool
	Observer    Observer
}

// Handler serves one GraphQL endpoint over HTTP and WebSocket.
type Handler struct {
	schema  graphql.Schema
	options HandlerOptions
	ws      *wsServer
}

// NewHandler constructs a new [Handler]. sessions authenticates WebSocket
// connection parameters.
func NewHandler(schema graphql.Schema, sessions ConnectionAuthenticator, options HandlerOptions) *Handler {
	if options.Observer == nil {
		options.Observer = noopObserver{}
	}
	handler := &Handler{schema: schema, options: options}
	handler.ws = newWSServer(handler, sessions)
	return handler
}

// CloseSockets ends every open WebSocket connection. [http.Server.Shutdown]
// does not track hijacked connections, so callers run this alongside it.
func (handler *Handler) CloseSockets() int {
	return handler.ws.shutdown()
}

// # HTTP Transport

func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if websocketRequested(request) {
		handler.ws.serve(writer, request)
		return
	}

	switch request.Method {
	case http.MethodGet, http.MethodPost:
	default:
		writer.Header().Set("Allow", "GET, POST")
		respond.GraphQLError(writer, http.StatusMethodNotAllowed, apperr.ValidationError("Only GET and POST are supported"))
		return
	}

	if handler.options.Playground && request.Method == http.MethodGet &&
		request.URL.Query().Get("query") == "" && acceptsHTML(request) {
		servePlayground(writer, request)
		return
	}

	gqlRequest, err := decodeRequest(request)
	if err != nil {
		respond.GraphQLError(writer, http.StatusBadRequest, apperr.Normalize(err))
		return
	}

	result := handler.execute(request, gqlRequest)
	respond.JSON(writer, http.StatusOK, result)
}

// execute runs a query or mutation. Subscriptions need the WebSocket transport.
func (handler *Handler) execute(request *http.Request, gqlRequest *Request) *graphql.Result {
	if appError := handler.prepare(gqlRequest); appError != nil {
		return errorResult(appError)
	}

	operation := operationType(gqlRequest.Query, gqlRequest.OperationName)
	if operation == ast.OperationTypeSubscription {
		return errorResult(apperr.ValidationError("Subscriptions require a WebSocket connection"))
	}

	result := graphql.Do(graphql.Params{
		Schema:         handler.schema,
		RequestString:  gqlRequest.Query,
		VariableValues: gqlRequest.Variables,
		OperationName:  gqlRequest.OperationName,
		Context:        request.Context(),
	})

	handler.options.Observer.ObserveOperation(operation, result.HasErrors())
	if result.HasErrors() {
		ctxutil.GetLogger(request.Context()).Debug("graphql_operation_errors",
			slog.String("operation", operation),
			slog.String("operation_name", gqlRequest.OperationName),
			slog.Int("errors", len(result.Errors)),
		)
	}
	return result
}

// prepare resolves persisted queries and rejects empty documents.
func (handler *Handler) prepare(gqlRequest *Request) *apperr.AppError {
	if handler.options.Persisted != nil {
		if appError := handler.options.Persisted.resolve(gqlRequest); appError != nil {
			return appError
		}
	}
	if strings.TrimSpace(gqlRequest.Query) == "" {
		return apperr.ValidationError("Must provide query string")
	}
	return nil
}

// decodeRequest reads GET query parameters or a POST body.
func decodeRequest(request *http.Request) (*Request, error) {
	if request.Method == http.MethodGet {
		values := request.URL.Query()
		gqlRequest := &Request{
			Query:         values.Get("query"),
			OperationName: values.Get("operationName"),
		}
		if err := decodeJSONParam(values.Get("variables"), &gqlRequest.Variables); err != nil {
			return nil, apperr.ValidationError("variables must be a JSON object")
		}
		if err := decodeJSONParam(values.Get("extensions"), &gqlRequest.Extensions); err != nil {
			return nil, apperr.ValidationError("extensions must be a JSON object")
		}
		return gqlRequest, nil
	}

	body, err := io.ReadAll(io.LimitReader(request.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.ValidationError("Unreadable request body")
	}

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "application/graphql" {
		return &Request{Query: string(body)}, nil
	}

	gqlRequest := &Request{}
	if err := json.Unmarshal(body, gqlRequest); err != nil {
		return nil, apperr.ValidationError("Request body must be a GraphQL JSON object")
	}
	return gqlRequest, nil
}

func decodeJSONParam(raw string, target interface{}) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), target)
}

// operationType returns "query", "mutation" or "subscription" for the
// operation that will run, or "unknown" when the document does not parse.
func operationType(query, operationName string) string {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return "unknown"
	}
	for _, definition := range document.Definitions {
		operation, ok := definition.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" || (operation.Name != nil && operation.Name.Value == operationName) {
			return operation.Operation
		}
	}
	return "unknown"
}

func errorResult(appError *apperr.AppError) *graphql.Result {
	return &graphql.Result{Errors: []gqlerrors.FormattedError{formatError(appError)}}
}

// formatError shapes an error raised outside the executor. gqlerrors only
// copies extensions from errors it located itself, so the wire code is set here.
func formatError(appError *apperr.AppError) gqlerrors.FormattedError {
	return gqlerrors.FormattedError{
		Message:    appError.Message,
		Locations:  []location.SourceLocation{},
		Extensions: appError.Extensions(),
	}
}

func websocketRequested(request *http.Request) bool {
	return strings.EqualFold(request.Header.Get("Upgrade"), "websocket")
}

func acceptsHTML(request *http.Request) bool {
	return strings.Contains(request.Header.Get("Accept"), "text/html")
}
