// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
)

// # WebSocket Protocols

const (
	// ProtocolTransportWS is the graphql-ws library protocol.
	ProtocolTransportWS = "graphql-transport-ws"
	// ProtocolLegacyWS is the subscriptions-transport-ws protocol.
	ProtocolLegacyWS = "graphql-ws"
)

// Message types of both protocols.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionError     = "connection_error"
	msgConnectionTerminate = "connection_terminate"
	msgKeepAlive           = "ka"
	msgPing                = "ping"
	msgPong                = "pong"
	msgSubscribe           = "subscribe"
	msgNext                = "next"
	msgStart               = "start"
	msgData                = "data"
	msgStop                = "stop"
	msgError               = "error"
	msgComplete            = "complete"
)

// Close codes of graphql-transport-ws.
const (
	closeBadRequest      = 4400
	closeUnauthorized    = 4401
	closeInitTimeout     = 4408
	closeDuplicateID     = 4409
	closeTooManyInitReqs = 4429
)

const (
	// KeepAliveInterval paces "ka" frames for legacy clients.
	KeepAliveInterval = 15 * time.Second
	// InitTimeout bounds the wait for connection_init.
	InitTimeout = 10 * time.Second

	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 1 << 20
)

// ConnectionAuthenticator turns connection_init params into a session.
// [authz.SessionBuilder] implements it.
type ConnectionAuthenticator interface {
	FromConnectionParams(context context.Context, params map[string]interface{}) (*authz.Session, error)
}

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsServer struct {
	handler  *Handler
	sessions ConnectionAuthenticator
	upgrader websocket.Upgrader

	mu     sync.Mutex
	active map[*wsConnection]struct{}
}

func newWSServer(handler *Handler, sessions ConnectionAuthenticator) *wsServer {
	checkOrigin := handler.options.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &wsServer{
		handler:  handler,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{ProtocolTransportWS, ProtocolLegacyWS},
			CheckOrigin:  checkOrigin,
		},
		active: make(map[*wsConnection]struct{}),
	}
}

// serve upgrades the request and runs the connection until it closes.
func (server *wsServer) serve(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	conn, err := server.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		logger.Warn("ws_upgrade_failed", slog.Any("error", err))
		return
	}

	protocol := conn.Subprotocol()
	if protocol == "" {
		protocol = ProtocolLegacyWS
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(request.Context()))
	connection := &wsConnection{
		server:     server,
		conn:       conn,
		protocol:   protocol,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.With(slog.String("protocol", protocol)),
		operations: make(map[string]*wsOperation),
	}

	server.track(connection)
	defer server.untrack(connection)

	server.handler.options.Observer.ConnectionOpened()
	defer server.handler.options.Observer.ConnectionClosed()

	connection.logger.Info("ws_connected")
	connection.run()
	connection.logger.Info("ws_disconnected")
}

func (server *wsServer) track(connection *wsConnection) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.active[connection] = struct{}{}
}

func (server *wsServer) untrack(connection *wsConnection) {
	server.mu.Lock()
	defer server.mu.Unlock()
	delete(server.active, connection)
}

// shutdown sends 1001 to every open socket and drops the connection, which
// ends its read loop and cancels its operations.
func (server *wsServer) shutdown() int {
	server.mu.Lock()
	connections := make([]*wsConnection, 0, len(server.active))
	for connection := range server.active {
		connections = append(connections, connection)
	}
	server.mu.Unlock()

	for _, connection := range connections {
		connection.close(websocket.CloseGoingAway, "server shutting down")
		_ = connection.conn.Close()
	}
	return len(connections)
}

// # Connection

type wsConnection struct {
	server   *wsServer
	conn     *websocket.Conn
	protocol string
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	session *authz.Session

	writeMu sync.Mutex

	opsMu      sync.Mutex
	operations map[string]*wsOperation
	running    sync.WaitGroup
}

// wsOperation is one registration of a client id. A legacy client may reuse
// an id, so cleanup compares entries rather than ids.
type wsOperation struct {
	cancel context.CancelFunc
}

func (connection *wsConnection) legacy() bool {
	return connection.protocol == ProtocolLegacyWS
}

func (connection *wsConnection) run() {
	defer func() {
		connection.cancel()
		connection.running.Wait()
		_ = connection.conn.Close()
	}()

	connection.conn.SetReadLimit(wsReadLimit)

	if !connection.initialize() {
		return
	}

	if connection.legacy() {
		go connection.keepAlive()
	}

	for {
		var message wsMessage
		if err := connection.conn.ReadJSON(&message); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				connection.logger.Debug("ws_read_ended", slog.Any("error", err))
			}
			return
		}
		if !connection.dispatch(message) {
			return
		}
	}
}

/*
initialize performs the connection_init handshake.

Description: The first frame must be connection_init and must arrive within
[InitTimeout]. Its payload is authenticated before anything else happens, so
a rejected client never reaches a subscription.

Returns:
  - bool: false when the connection was refused and must close
*/
func (connection *wsConnection) initialize() bool {
	_ = connection.conn.SetReadDeadline(time.Now().Add(InitTimeout))

	var message wsMessage
	if err := connection.conn.ReadJSON(&message); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			connection.close(closeInitTimeout, "Connection initialisation timeout")
		}
		return false
	}
	_ = connection.conn.SetReadDeadline(time.Time{})

	if message.Type != msgConnectionInit {
		connection.reject(apperr.Unauthenticated("currentUser & currentsite Required"))
		return false
	}

	params := map[string]interface{}{}
	if len(message.Payload) > 0 && string(message.Payload) != "null" {
		if err := json.Unmarshal(message.Payload, &params); err != nil {
			connection.reject(apperr.ValidationError("connection_init payload must be an object"))
			return false
		}
	}

	session, err := connection.server.sessions.FromConnectionParams(connection.ctx, params)
	if err != nil {
		connection.reject(apperr.Normalize(err))
		return false
	}
	connection.session = session
	identity := ctxutil.Identity{UserID: session.UserID(), SiteID: session.CurrentSite}
	connection.ctx = ctxutil.WithIdentity(connection.ctx, identity)
	connection.logger = connection.logger.With(identity.Attrs()...)

	if err := connection.send(wsMessage{Type: msgConnectionAck}); err != nil {
		return false
	}
	if connection.legacy() {
		_ = connection.send(wsMessage{Type: msgKeepAlive})
	}
	return true
}

// reject refuses the handshake in the dialect of the negotiated protocol.
func (connection *wsConnection) reject(appError *apperr.AppError) {
	connection.logger.Info("ws_rejected",
		slog.String("kind", appError.Code),
		slog.Int("code", appError.WireCode),
	)

	if connection.legacy() {
		payload, _ := json.Marshal(formatError(appError))
		_ = connection.send(wsMessage{Type: msgConnectionError, Payload: payload})
		connection.close(websocket.CloseNormalClosure, "")
		return
	}
	connection.close(closeUnauthorized, appError.Message)
}

// dispatch handles one client frame. It returns false to end the connection.
func (connection *wsConnection) dispatch(message wsMessage) bool {
	switch message.Type {
	case msgSubscribe, msgStart:
		return connection.start(message.ID, message.Payload)
	case msgComplete, msgStop:
		connection.stop(message.ID)
	case msgPing:
		_ = connection.send(wsMessage{Type: msgPong, Payload: message.Payload})
	case msgPong:
	case msgConnectionTerminate:
		return false
	case msgConnectionInit:
		if !connection.legacy() {
			connection.close(closeTooManyInitReqs, "Too many initialisation requests")
			return false
		}
	default:
		if !connection.legacy() {
			connection.close(closeBadRequest, "Invalid message received")
			return false
		}
		connection.sendError(message.ID, nil, apperr.ValidationError("Invalid message type"))
	}
	return true
}

// # Operations

// start runs one operation in its own goroutine.
func (connection *wsConnection) start(id string, raw json.RawMessage) bool {
	if id == "" {
		if connection.legacy() {
			connection.sendError(id, nil, apperr.ValidationError("Operation id is required"))
			return true
		}
		connection.close(closeBadRequest, "Operation id is required")
		return false
	}

	request := &Request{}
	if err := json.Unmarshal(raw, request); err != nil {
		connection.sendError(id, nil, apperr.ValidationError("Invalid operation payload"))
		return true
	}

	connection.opsMu.Lock()
	if _, exists := connection.operations[id]; exists {
		connection.opsMu.Unlock()
		if connection.legacy() {
			connection.stop(id)
		} else {
			connection.close(closeDuplicateID, "Subscriber for "+id+" already exists")
			return false
		}
		connection.opsMu.Lock()
	}
	ctx, cancel := context.WithCancel(connection.ctx)
	operation := &wsOperation{cancel: cancel}
	connection.operations[id] = operation
	connection.opsMu.Unlock()

	connection.running.Add(1)
	go func() {
		defer connection.running.Done()
		defer connection.finish(id, operation)
		connection.execute(ctx, id, operation, request)
	}()
	return true
}

/*
execute runs a query, mutation or subscription and streams its results.

Description: Each operation gets a fresh session carrying the connection's
identity, so memoized permissions never outlive one operation.
*/
func (connection *wsConnection) execute(ctx context.Context, id string, operation *wsOperation, request *Request) {
	handler := connection.server.handler

	if appError := handler.prepare(request); appError != nil {
		connection.sendError(id, operation, appError)
		return
	}
	if limit := handler.options.MaxQueryLength; limit > 0 && utf8.RuneCountInString(request.Query) > limit {
		connection.sendError(id, operation, apperr.QueryTooLarge(limit))
		return
	}

	ctx = authz.WithSession(ctx, &authz.Session{
		CurrentUser: connection.session.CurrentUser,
		CurrentSite: connection.session.CurrentSite,
		Token:       connection.session.Token,
	})
	ctx = ctxutil.WithLogger(ctx, connection.logger.With(slog.String("operation_id", id)))

	params := graphql.Params{
		Schema:         handler.schema,
		RequestString:  request.Query,
		VariableValues: request.Variables,
		OperationName:  request.OperationName,
		Context:        ctx,
	}

	kind := operationType(request.Query, request.OperationName)
	if kind != ast.OperationTypeSubscription {
		result := graphql.Do(params)
		handler.options.Observer.ObserveOperation(kind, result.HasErrors())
		connection.sendResult(ctx, id, operation, result)
		return
	}

	handler.options.Observer.ObserveOperation(kind, false)
	for result := range graphql.Subscribe(params) {
		connection.sendResult(ctx, id, operation, result)
	}
}

// stop cancels an operation at the client's request.
func (connection *wsConnection) stop(id string) {
	connection.opsMu.Lock()
	operation, ok := connection.operations[id]
	delete(connection.operations, id)
	connection.opsMu.Unlock()

	if ok {
		operation.cancel()
	}
}

// finish deregisters an operation and, unless the client stopped or replaced
// it, tells the client that no more results follow.
func (connection *wsConnection) finish(id string, operation *wsOperation) {
	defer operation.cancel()

	if connection.release(id, operation) && connection.ctx.Err() == nil {
		_ = connection.send(wsMessage{ID: id, Type: msgComplete})
	}
}

// release removes id when it still belongs to operation.
func (connection *wsConnection) release(id string, operation *wsOperation) bool {
	connection.opsMu.Lock()
	defer connection.opsMu.Unlock()

	if connection.operations[id] != operation {
		return false
	}
	delete(connection.operations, id)
	return true
}

// # Writes

func (connection *wsConnection) sendResult(ctx context.Context, id string, operation *wsOperation, result *graphql.Result) {
	if ctx.Err() != nil {
		return
	}

	// A result without data means the operation never ran.
	if result.Data == nil && len(result.Errors) > 0 {
		connection.sendErrors(id, operation, result.Errors)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		connection.logger.Error("ws_marshal_failed", slog.Any("error", err))
		return
	}

	messageType := msgNext
	if connection.legacy() {
		messageType = msgData
	}
	_ = connection.send(wsMessage{ID: id, Type: messageType, Payload: payload})
}

func (connection *wsConnection) sendError(id string, operation *wsOperation, appError *apperr.AppError) {
	connection.sendErrors(id, operation, []gqlerrors.FormattedError{formatError(appError)})
}

// sendErrors reports operation-level errors. graphql-transport-ws expects an
// array and treats the error as the end of the operation. The legacy protocol
// expects a single error object followed by complete. operation is nil for
// frames rejected before registration.
func (connection *wsConnection) sendErrors(id string, operation *wsOperation, formatted []gqlerrors.FormattedError) {
	var payload []byte
	if connection.legacy() && len(formatted) > 0 {
		payload, _ = json.Marshal(formatted[0])
	} else {
		payload, _ = json.Marshal(formatted)
		if operation != nil {
			connection.release(id, operation)
		}
	}
	_ = connection.send(wsMessage{ID: id, Type: msgError, Payload: payload})
}

func (connection *wsConnection) send(message wsMessage) error {
	connection.writeMu.Lock()
	defer connection.writeMu.Unlock()

	_ = connection.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return connection.conn.WriteJSON(message)
}

func (connection *wsConnection) close(code int, reason string) {
	connection.writeMu.Lock()
	defer connection.writeMu.Unlock()

	frame := websocket.FormatCloseMessage(code, reason)
	_ = connection.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(wsWriteTimeout))
}

// keepAlive sends "ka" frames until the connection ends.
func (connection *wsConnection) keepAlive() {
	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-connection.ctx.Done():
			return
		case <-ticker.C:
			if err := connection.send(wsMessage{Type: msgKeepAlive}); err != nil {
				return
			}
		}
	}
}
