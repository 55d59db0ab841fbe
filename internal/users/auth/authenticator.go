// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth resolves a bearer token into the account it was issued for.

It is the only place where a JWT turns into a [account.User]. Transports call
it while building a request session, so every failure here is reported as an
INVALID_TOKEN (498) error and never as a storage error.
*/
package auth

import (
	"context"
	"log/slog"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/sec"
	"github.com/taibuivan/sitegraph/internal/users/account"
)

// # Contracts

// TokenVerifier validates a signed access token.
type TokenVerifier interface {
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// UserFinder loads the account a token points to.
type UserFinder interface {
	FindByID(context context.Context, id string) (*account.User, error)
}

// Authenticator turns tokens into users.
type Authenticator struct {
	verifier TokenVerifier
	users    UserFinder
}

// NewAuthenticator constructs a new [Authenticator].
func NewAuthenticator(verifier TokenVerifier, users UserFinder) *Authenticator {
	return &Authenticator{verifier: verifier, users: users}
}

/*
Authenticate verifies token and loads its user.

Description: The signature, issuer and expiry are checked first. The user must
still exist, be active and not locked, so a deactivated account loses access
before its token expires.

Parameters:
  - context: context.Context
  - token: string (raw JWT, no "Bearer" prefix)

Returns:
  - *account.User: The authenticated account
  - error: apperr.InvalidToken for every rejection, Internal for storage failures
*/
func (authenticator *Authenticator) Authenticate(context context.Context, token string) (*account.User, error) {
	if token == "" {
		return nil, apperr.InvalidToken("Invalid Token")
	}

	claims, err := authenticator.verifier.VerifyToken(token)
	if err != nil {
		ctxutil.GetLogger(context).Debug("token_rejected", slog.Any("error", err))
		return nil, apperr.InvalidToken("Invalid Token")
	}

	user, err := authenticator.users.FindByID(context, claims.UserID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.InvalidToken("Invalid Token")
		}
		return nil, apperr.Normalize(err)
	}

	if !user.IsActive {
		return nil, apperr.InvalidToken("Account is deactivated")
	}
	if user.IsLocked {
		return nil, apperr.InvalidToken("Account is locked")
	}

	return user, nil
}
