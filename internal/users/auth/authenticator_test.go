// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/sec"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/internal/users/auth"
)

type userMap map[string]*account.User

func (users userMap) FindByID(_ context.Context, id string) (*account.User, error) {
	if user, ok := users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

type brokenStore struct{}

func (brokenStore) FindByID(context.Context, string) (*account.User, error) {
	return nil, errors.New("socket closed")
}

/*
TestAuthenticator_Authenticate covers each rejection path of token resolution.
*/
func TestAuthenticator_Authenticate(t *testing.T) {
	tokens, err := sec.NewTokenService("0123456789abcdef0123", "sitegraph")
	require.NoError(t, err)

	users := userMap{
		"active":   {ID: "active", Email: "a@example.com", IsActive: true},
		"inactive": {ID: "inactive", Email: "i@example.com", IsActive: false},
		"locked":   {ID: "locked", Email: "l@example.com", IsActive: true, IsLocked: true},
	}
	authenticator := auth.NewAuthenticator(tokens, users)

	sign := func(userID string) string {
		token, err := tokens.GenerateAccessToken(userID, userID+"@example.com", time.Hour)
		require.NoError(t, err)
		return token
	}

	user, err := authenticator.Authenticate(context.Background(), sign("active"))
	require.NoError(t, err)
	assert.Equal(t, "active", user.ID)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"unknown_user", sign("ghost")},
		{"inactive", sign("inactive")},
		{"locked", sign("locked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authenticator.Authenticate(context.Background(), tt.token)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeInvalidToken, ae.WireCode)
		})
	}

	t.Run("storage_failure_is_internal", func(t *testing.T) {
		broken := auth.NewAuthenticator(tokens, brokenStore{})
		_, err := broken.Authenticate(context.Background(), sign("active"))
		assert.Equal(t, apperr.CodeInternal, apperr.As(err).WireCode)
	})
}
