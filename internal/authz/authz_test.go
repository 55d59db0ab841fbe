// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/users/account"
)

type tokenTable map[string]*account.User

func (table tokenTable) Authenticate(_ context.Context, token string) (*account.User, error) {
	if user, ok := table[token]; ok {
		return user, nil
	}
	return nil, apperr.InvalidToken("Invalid Token")
}

// grantTable maps user -> site -> codes and counts lookups.
type grantTable struct {
	grants map[string]map[string][]string
	calls  atomic.Int32
	err    error
}

func (table *grantTable) CodesFor(_ context.Context, userID, siteID string) (map[string]struct{}, error) {
	table.calls.Add(1)
	if table.err != nil {
		return nil, table.err
	}
	codes := map[string]struct{}{}
	for site, list := range table.grants[userID] {
		if siteID != "" && site != siteID {
			continue
		}
		for _, code := range list {
			codes[code] = struct{}{}
		}
	}
	return codes, nil
}

type denialCounter struct {
	denials map[string]int
}

func (counter *denialCounter) ObserveDenial(directive string, code int) {
	counter.denials[directive]++
	_ = code
}

func wireCode(t *testing.T, err error) int {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae)
	return ae.WireCode
}

var ada = &account.User{ID: "u1", Email: "ada@example.com", IsActive: true}

/*
TestSessionBuilder_FromHTTP covers anonymous, valid and rejected tokens.
*/
func TestSessionBuilder_FromHTTP(t *testing.T) {
	builder := authz.NewSessionBuilder(tokenTable{"good": ada})

	tests := []struct {
		name      string
		token     string
		site      string
		wantUser  bool
		wantError bool
	}{
		{"anonymous", "", "s1", false, false},
		{"valid", "good", "s1", true, false},
		{"bearer_prefix", "Bearer good", "", true, false},
		{"rejected", "bad", "s1", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if tt.token != "" {
				request.Header.Set("token", tt.token)
			}
			request.Header.Set("currentsite", tt.site)

			session := builder.FromHTTP(request)
			assert.Equal(t, tt.wantUser, session.Authenticated())
			assert.Equal(t, tt.wantError, session.TokenErr != nil)
			assert.Equal(t, tt.site, session.CurrentSite)
		})
	}
}

/*
TestSessionBuilder_FromConnectionParams refuses connections without a valid token.
*/
func TestSessionBuilder_FromConnectionParams(t *testing.T) {
	builder := authz.NewSessionBuilder(tokenTable{"good": ada})
	ctx := context.Background()

	session, err := builder.FromConnectionParams(ctx, map[string]interface{}{"token": "good", "currentsite": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID())
	assert.Equal(t, "s1", session.CurrentSite)

	_, err = builder.FromConnectionParams(ctx, map[string]interface{}{"currentsite": "s1"})
	assert.Equal(t, apperr.CodeUnauthenticated, wireCode(t, err))

	_, err = builder.FromConnectionParams(ctx, map[string]interface{}{"Token": "good"})
	assert.Equal(t, apperr.CodeUnauthenticated, wireCode(t, err))

	_, err = builder.FromConnectionParams(ctx, map[string]interface{}{"token": "bad"})
	assert.Equal(t, apperr.CodeInvalidToken, wireCode(t, err))
}

/*
TestGuard_RequireAuthenticated checks the site requirement toggle.
*/
func TestGuard_RequireAuthenticated(t *testing.T) {
	counter := &denialCounter{denials: map[string]int{}}
	strict := authz.NewGuard(&grantTable{}, authz.GuardOptions{RequireSite: true}, counter)
	lenient := authz.NewGuard(&grantTable{}, authz.GuardOptions{}, nil)

	anonymous := context.Background()
	noSite := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada})
	full := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})

	assert.Equal(t, apperr.CodeUnauthenticated, wireCode(t, strict.RequireAuthenticated(anonymous)))
	assert.Equal(t, apperr.CodeUnauthenticated, wireCode(t, strict.RequireAuthenticated(noSite)))
	assert.NoError(t, strict.RequireAuthenticated(full))

	assert.NoError(t, lenient.RequireAuthenticated(noSite))
	assert.Equal(t, apperr.CodeUnauthenticated, wireCode(t, lenient.RequireAuthenticated(anonymous)))

	assert.Equal(t, 2, counter.denials[authz.DirectiveIsAuthenticated])
}

/*
TestGuard_RequirePermission covers the per-site lookup, flattening and the error codes.
*/
func TestGuard_RequirePermission(t *testing.T) {
	grants := &grantTable{grants: map[string]map[string][]string{
		"u1": {"s1": {"USER_READ"}, "s2": {"USER_LOCK"}},
	}}
	guard := authz.NewGuard(grants, authz.GuardOptions{}, nil)

	onSite := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})
	anySite := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada})
	rejected := authz.WithSession(context.Background(), &authz.Session{Token: "bad", TokenErr: errors.New("expired")})

	assert.NoError(t, guard.RequirePermission(onSite, "USER_READ"))
	assert.Equal(t, apperr.CodeUnauthorized, wireCode(t, guard.RequirePermission(onSite, "USER_LOCK")))

	assert.NoError(t, guard.RequirePermission(anySite, "USER_LOCK"))

	assert.Equal(t, apperr.CodeInvalidToken, wireCode(t, guard.RequirePermission(context.Background(), "USER_READ")))
	assert.Equal(t, apperr.CodeInvalidToken, wireCode(t, guard.RequirePermission(rejected, "USER_READ")))

	unknown := authz.WithSession(context.Background(), &authz.Session{CurrentUser: &account.User{ID: "u9"}, CurrentSite: "s1"})
	assert.Equal(t, apperr.CodeUnauthorized, wireCode(t, guard.RequirePermission(unknown, "USER_READ")))
}

/*
TestGuard_Memoize loads grants once per session but still decides per code.
*/
func TestGuard_Memoize(t *testing.T) {
	grants := &grantTable{grants: map[string]map[string][]string{"u1": {"s1": {"USER_READ"}}}}
	memo := authz.NewGuard(grants, authz.GuardOptions{Memoize: true}, nil)

	ctx := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})
	assert.NoError(t, memo.RequirePermission(ctx, "USER_READ"))
	assert.NoError(t, memo.RequirePermission(ctx, "USER_READ"))
	assert.Error(t, memo.RequirePermission(ctx, "USER_DELETE"))
	assert.EqualValues(t, 1, grants.calls.Load())

	other := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})
	assert.NoError(t, memo.RequirePermission(other, "USER_READ"))
	assert.EqualValues(t, 2, grants.calls.Load())

	perField := authz.NewGuard(grants, authz.GuardOptions{}, nil)
	fresh := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})
	_ = perField.RequirePermission(fresh, "USER_READ")
	_ = perField.RequirePermission(fresh, "USER_READ")
	assert.EqualValues(t, 4, grants.calls.Load())

	grants.err = errors.New("mongo down")
	broken := authz.WithSession(context.Background(), &authz.Session{CurrentUser: ada, CurrentSite: "s1"})
	assert.Equal(t, apperr.CodeInternal, wireCode(t, perField.RequirePermission(broken, "USER_READ")))
}
