// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/constants"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/users/account"
)

// Authenticator resolves a token into a user.
type Authenticator interface {
	Authenticate(context context.Context, token string) (*account.User, error)
}

// SessionBuilder builds sessions for both transports.
type SessionBuilder struct {
	authenticator Authenticator
}

// NewSessionBuilder constructs a new [SessionBuilder].
func NewSessionBuilder(authenticator Authenticator) *SessionBuilder {
	return &SessionBuilder{authenticator: authenticator}
}

/*
FromHTTP reads the "token" and "currentsite" headers.

Description: A missing token yields an anonymous session. A rejected token
also yields an anonymous session that remembers the failure in TokenErr.
Public fields keep working either way; guarded fields fail.
*/
func (builder *SessionBuilder) FromHTTP(request *http.Request) *Session {
	session := &Session{
		Token:       bearer(request.Header.Get(constants.HeaderToken)),
		CurrentSite: strings.TrimSpace(request.Header.Get(constants.HeaderCurrentSite)),
	}
	if session.Token == "" {
		return session
	}

	user, err := builder.authenticator.Authenticate(request.Context(), session.Token)
	if err != nil {
		ctxutil.GetLogger(request.Context()).Debug("session_token_rejected", slog.Any("error", err))
		session.TokenErr = err
		return session
	}

	session.CurrentUser = user
	return session
}

/*
FromConnectionParams authenticates a WebSocket connection.

Description: Only the exact keys "token" and "currentsite" are read. Unlike
HTTP, a connection without a valid token is refused outright.

Parameters:
  - context: context.Context
  - params: map[string]interface{} (connection_init payload)

Returns:
  - *Session: The authenticated session
  - error: Unauthenticated (499) when no token is given, InvalidToken (498) when it is rejected
*/
func (builder *SessionBuilder) FromConnectionParams(context context.Context, params map[string]interface{}) (*Session, error) {
	token, _ := params[constants.ParamToken].(string)
	site, _ := params[constants.ParamCurrentSite].(string)

	token = bearer(token)
	if token == "" {
		return nil, apperr.Unauthenticated("currentUser & currentsite Required")
	}

	user, err := builder.authenticator.Authenticate(context, token)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.WireCode == apperr.CodeInvalidToken {
			return nil, appError
		}
		return nil, apperr.InvalidToken("Invalid Token")
	}

	return &Session{CurrentUser: user, CurrentSite: strings.TrimSpace(site), Token: token}, nil
}

// bearer accepts both a raw token and the "Bearer <token>" form.
func bearer(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return value
}
