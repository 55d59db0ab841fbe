// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/access/grant"
	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/graph"
	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/pubsub"
	"github.com/taibuivan/sitegraph/internal/site"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// # Fakes
//
// Each fake embeds the service interface it stands in for. Methods a test does
// not expect stay unimplemented and panic if called.

type fakeUsers struct {
	graph.UserService

	mu        sync.Mutex
	users     map[string]*account.User
	listCalls atomic.Int32
}

func newFakeUsers(users ...*account.User) *fakeUsers {
	fake := &fakeUsers{users: map[string]*account.User{}}
	for _, user := range users {
		copied := *user
		fake.users[user.ID] = &copied
	}
	return fake
}

func (fake *fakeUsers) List(context.Context, pagination.Window) ([]*account.User, error) {
	fake.listCalls.Add(1)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	out := []*account.User{}
	for _, user := range fake.users {
		out = append(out, user)
	}
	return out, nil
}

func (fake *fakeUsers) FindByID(_ context.Context, id string) (*account.User, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if user, ok := fake.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (fake *fakeUsers) Search(_ context.Context, criteria mongodb.Criteria) ([]*account.User, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	out := []*account.User{}
	for _, user := range fake.users {
		if email, ok := criteria.Where["email"]; ok && email != user.Email {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (fake *fakeUsers) Create(_ context.Context, input account.CreateInput) (*account.User, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for _, user := range fake.users {
		if user.Email == input.Email {
			return nil, apperr.Conflict("Conflict: Email")
		}
	}
	user := &account.User{
		ID:        "u-" + input.FirstName,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Gender:    input.Gender,
		IsActive:  true,
	}
	fake.users[user.ID] = user
	return user, nil
}

func (fake *fakeUsers) ToggleLock(_ context.Context, id, reason string, _ *account.User) (*account.User, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	user, ok := fake.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	user.IsLocked = !user.IsLocked
	user.Reason = ""
	if user.IsLocked {
		user.Reason = reason
	}
	return user, nil
}

type fakeSites struct {
	graph.SiteService

	sites     []*site.Site
	listCalls atomic.Int32
}

func (fake *fakeSites) List(context.Context, pagination.Window) ([]*site.Site, error) {
	fake.listCalls.Add(1)
	return fake.sites, nil
}

func (fake *fakeSites) Search(context.Context, mongodb.Criteria) ([]*site.Site, error) {
	return fake.sites, nil
}

type fakeGrants struct {
	graph.GrantService

	byUser map[string][]*grant.UserPermission
}

func (fake *fakeGrants) ListByUser(_ context.Context, userID string) ([]*grant.UserPermission, error) {
	return fake.byUser[userID], nil
}

// grantTable maps user -> site -> codes and counts lookups.
type grantTable struct {
	grants map[string]map[string][]string
	calls  atomic.Int32
}

func (table *grantTable) CodesFor(_ context.Context, userID, siteID string) (map[string]struct{}, error) {
	table.calls.Add(1)
	codes := map[string]struct{}{}
	for siteKey, list := range table.grants[userID] {
		if siteID != "" && siteKey != siteID {
			continue
		}
		for _, code := range list {
			codes[code] = struct{}{}
		}
	}
	return codes, nil
}

type tokenTable map[string]*account.User

func (table tokenTable) Authenticate(_ context.Context, token string) (*account.User, error) {
	if user, ok := table[token]; ok {
		return user, nil
	}
	return nil, apperr.InvalidToken("Invalid Token")
}

// # Fixture

var (
	ada   = &account.User{ID: "u-ada", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", IsActive: true}
	grace = &account.User{ID: "u-grace", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", IsActive: true}
)

type fixture struct {
	schema graphql.Schema
	users  *fakeUsers
	sites  *fakeSites
	grants *fakeGrants
	table  *grantTable
	bus    *pubsub.MemoryBus
}

func newFixture(t *testing.T, options authz.GuardOptions) *fixture {
	t.Helper()

	f := &fixture{
		users: newFakeUsers(ada, grace),
		sites: &fakeSites{sites: []*site.Site{{ID: "s1", Name: "Main", Slug: "main"}}},
		grants: &fakeGrants{byUser: map[string][]*grant.UserPermission{
			ada.ID: {{ID: "g1", UserID: ada.ID, SiteID: "s1", SiteName: "Main",
				Permissions: grant.Infos([]string{"USER_READ"})}},
		}},
		table: &grantTable{grants: map[string]map[string][]string{
			ada.ID: {"s1": {"USER_READ", "USER_LOCK"}, "s2": {"EMAIL_READ"}},
		}},
		bus: pubsub.NewMemoryBus(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}

	schema, err := graph.NewSchema(graph.Dependencies{
		Users:  f.users,
		Sites:  f.sites,
		Grants: f.grants,
		Bus:    f.bus,
		Guard:  authz.NewGuard(f.table, options, nil),
	})
	require.NoError(t, err)
	f.schema = schema
	return f
}

func (f *fixture) run(ctx context.Context, query string, variables map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}

// as attaches a session for user on currentSite.
func as(user *account.User, currentSite string) context.Context {
	return authz.WithSession(context.Background(), &authz.Session{CurrentUser: user, CurrentSite: currentSite})
}

func anonymous() context.Context {
	return authz.WithSession(context.Background(), &authz.Session{})
}

// errorCode returns extensions.code of the first error.
func errorCode(t *testing.T, result *graphql.Result) string {
	t.Helper()
	require.NotEmpty(t, result.Errors, "expected an error")
	code, _ := result.Errors[0].Extensions["code"].(string)
	return code
}
