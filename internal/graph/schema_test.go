// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/graph"
	"github.com/taibuivan/sitegraph/internal/pubsub"
)

var defaultGuard = authz.GuardOptions{RequireSite: true, Memoize: true}

/*
TestIsAuthenticated covers the isAuthenticated directive on the sites query.
*/
func TestIsAuthenticated(t *testing.T) {
	t.Run("no_session_never_reaches_resolver", func(t *testing.T) {
		f := newFixture(t, defaultGuard)

		result := f.run(anonymous(), `{ sites { _id } }`, nil)

		assert.Equal(t, "499", errorCode(t, result))
		assert.Equal(t, "currentUser & currentsite Required", result.Errors[0].Message)
		assert.Zero(t, f.sites.listCalls.Load())
	})

	t.Run("user_without_site", func(t *testing.T) {
		f := newFixture(t, defaultGuard)

		result := f.run(as(ada, ""), `{ sites { _id } }`, nil)

		assert.Equal(t, "499", errorCode(t, result))
		assert.Zero(t, f.sites.listCalls.Load())
	})

	t.Run("site_optional", func(t *testing.T) {
		f := newFixture(t, authz.GuardOptions{RequireSite: false})

		result := f.run(as(ada, ""), `{ sites { _id name } }`, nil)

		require.Empty(t, result.Errors)
		assert.Equal(t, int32(1), f.sites.listCalls.Load())
	})

	t.Run("me_returns_caller", func(t *testing.T) {
		f := newFixture(t, defaultGuard)

		result := f.run(as(ada, "s1"), `{ me { _id fullName } }`, nil)

		require.Empty(t, result.Errors)
		me := result.Data.(map[string]interface{})["me"].(map[string]interface{})
		assert.Equal(t, ada.ID, me["_id"])
		assert.Equal(t, "Ada Lovelace", me["fullName"])
	})
}

/*
TestHasPermission covers the hasPermission directive on the users query.
*/
func TestHasPermission(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		wantCode  string
		wantCalls int32
	}{
		{name: "no_token", ctx: anonymous(), wantCode: "498"},
		{
			name: "rejected_token",
			ctx: authz.WithSession(context.Background(), &authz.Session{
				Token:    "expired",
				TokenErr: errors.New("token expired"),
			}),
			wantCode: "498",
		},
		{name: "code_on_other_site", ctx: as(ada, "s2"), wantCode: "401"},
		{name: "user_without_grants", ctx: as(grace, "s1"), wantCode: "401"},
		{name: "code_present", ctx: as(ada, "s1"), wantCalls: 1},
		{name: "no_site_flattens_all_grants", ctx: as(ada, ""), wantCalls: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, defaultGuard)

			result := f.run(tc.ctx, `{ users { _id email } }`, nil)

			assert.Equal(t, tc.wantCalls, f.users.listCalls.Load())
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, errorCode(t, result))
				return
			}
			require.Empty(t, result.Errors)
			users := result.Data.(map[string]interface{})["users"].([]interface{})
			assert.Len(t, users, 2)
		})
	}
}

/*
TestHasPermission_LookupPerOperation checks how often grants are read when an
operation carries several guarded fields.
*/
func TestHasPermission_LookupPerOperation(t *testing.T) {
	query := `{ a: users { _id } b: users { _id } c: user(_id: "u-ada") { _id } }`

	t.Run("memoized", func(t *testing.T) {
		f := newFixture(t, authz.GuardOptions{RequireSite: true, Memoize: true})

		result := f.run(as(ada, "s1"), query, nil)

		require.Empty(t, result.Errors)
		assert.Equal(t, int32(1), f.table.calls.Load())
	})

	t.Run("per_field", func(t *testing.T) {
		f := newFixture(t, authz.GuardOptions{RequireSite: true, Memoize: false})

		result := f.run(as(ada, "s1"), query, nil)

		require.Empty(t, result.Errors)
		assert.Equal(t, int32(3), f.table.calls.Load())
	})
}

func TestChain_Order(t *testing.T) {
	var trace []string
	step := func(name string) graph.Interceptor {
		return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
			return func(params graphql.ResolveParams) (interface{}, error) {
				trace = append(trace, name)
				return next(params)
			}
		}
	}

	resolve := graph.Chain(func(graphql.ResolveParams) (interface{}, error) {
		trace = append(trace, "resolve")
		return "ok", nil
	}, step("first"), step("second"))

	result, err := resolve(graphql.ResolveParams{Context: context.Background()})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{"first", "second", "resolve"}, trace)
}

func TestChain_NormalizesErrors(t *testing.T) {
	resolve := graph.Chain(func(graphql.ResolveParams) (interface{}, error) {
		return nil, errors.New("connection reset by peer")
	})

	_, err := resolve(graphql.ResolveParams{Context: context.Background()})

	require.Error(t, err)
	assert.Equal(t, "An unexpected error occurred", err.Error())
}

func TestUserSites(t *testing.T) {
	f := newFixture(t, defaultGuard)

	result := f.run(as(ada, "s1"), `{ user(_id: "u-ada") { email sites { siteId siteName permissions { code } } } }`, nil)

	require.Empty(t, result.Errors)
	user := result.Data.(map[string]interface{})["user"].(map[string]interface{})
	sites := user["sites"].([]interface{})
	require.Len(t, sites, 1)
	first := sites[0].(map[string]interface{})
	assert.Equal(t, "s1", first["siteId"])
	assert.Equal(t, []interface{}{map[string]interface{}{"code": "USER_READ"}}, first["permissions"])
}

func TestSearch(t *testing.T) {
	query := `query Search($type: SearchType!, $conditions: SearchInput) {
		search(type: $type, conditions: $conditions) {
			__typename
			... on User { email }
			... on Site { slug }
		}
	}`

	t.Run("users", func(t *testing.T) {
		f := newFixture(t, defaultGuard)

		result := f.run(as(ada, "s1"), query, map[string]interface{}{
			"type":       "User",
			"conditions": map[string]interface{}{"where": map[string]interface{}{"User": map[string]interface{}{"email": "grace@example.com"}}},
		})

		require.Empty(t, result.Errors)
		hits := result.Data.(map[string]interface{})["search"].([]interface{})
		require.Len(t, hits, 1)
		assert.Equal(t, map[string]interface{}{"__typename": "User", "email": "grace@example.com"}, hits[0])
	})

	t.Run("sites", func(t *testing.T) {
		f := newFixture(t, defaultGuard)

		result := f.run(as(ada, "s1"), query, map[string]interface{}{"type": "Site"})

		require.Empty(t, result.Errors)
		hits := result.Data.(map[string]interface{})["search"].([]interface{})
		assert.Equal(t, map[string]interface{}{"__typename": "Site", "slug": "main"}, hits[0])
	})

	t.Run("empty_is_not_found", func(t *testing.T) {
		f := newFixture(t, defaultGuard)

		result := f.run(as(ada, "s1"), query, map[string]interface{}{
			"type":       "User",
			"conditions": map[string]interface{}{"where": map[string]interface{}{"User": map[string]interface{}{"email": "nobody@example.com"}}},
		})

		assert.Equal(t, "404", errorCode(t, result))
	})
}

func TestCreateUser(t *testing.T) {
	mutation := `mutation Create($input: CreateUserInput!) {
		createUser(input: $input) { _id email gender }
	}`
	input := func(email string) map[string]interface{} {
		return map[string]interface{}{"input": map[string]interface{}{
			"firstName": "Alan",
			"lastName":  "Turing",
			"email":     email,
			"password":  "enigma42",
			"gender":    "MALE",
			"sites":     []interface{}{map[string]interface{}{"siteId": "s1", "permissions": []interface{}{"USER_READ"}}},
		}}
	}

	t.Run("publishes_user_created", func(t *testing.T) {
		f := newFixture(t, defaultGuard)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		onSite, err := f.bus.Subscribe(ctx, pubsub.ChannelUserCreated, nil)
		require.NoError(t, err)

		result := f.run(anonymous(), mutation, input("alan@example.com"))

		require.Empty(t, result.Errors)
		created := result.Data.(map[string]interface{})["createUser"].(map[string]interface{})
		assert.Equal(t, "MALE", created["gender"])

		select {
		case event := <-onSite:
			userCreated := event.(pubsub.UserCreated)
			assert.Equal(t, "alan@example.com", userCreated.User.Email)
			assert.Equal(t, []string{"s1"}, userCreated.SiteIDs)
		case <-time.After(time.Second):
			t.Fatal("userCreated was not published")
		}
	})

	t.Run("duplicate_email_is_conflict", func(t *testing.T) {
		f := newFixture(t, defaultGuard)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := f.bus.Subscribe(ctx, pubsub.ChannelUserCreated, nil)
		require.NoError(t, err)

		result := f.run(anonymous(), mutation, input(ada.Email))

		assert.Equal(t, "409", errorCode(t, result))
		assert.Len(t, f.users.users, 2)
		select {
		case <-events:
			t.Fatal("nothing should be published on conflict")
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestLockAndUnlockUser(t *testing.T) {
	f := newFixture(t, defaultGuard)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := f.bus.Subscribe(ctx, pubsub.ChannelUserLocked, nil)
	require.NoError(t, err)

	result := f.run(as(ada, "s1"), `mutation { lockAndUnlockUser(_id: "u-grace", reason: "spam") }`, nil)

	require.Empty(t, result.Errors)
	assert.Equal(t, true, result.Data.(map[string]interface{})["lockAndUnlockUser"])

	event := (<-events).(pubsub.UserLocked)
	assert.True(t, event.Locked)
	assert.Equal(t, "spam", event.Reason)
	assert.Equal(t, ada.ID, event.Actor.ID)
}

func TestSubscription_Filter(t *testing.T) {
	f := newFixture(t, defaultGuard)
	ctx, cancel := context.WithCancel(as(ada, "s1"))
	defer cancel()

	results := graphql.Subscribe(graphql.Params{
		Schema:        f.schema,
		RequestString: `subscription { userCreated(siteId: "s2") { email } }`,
		Context:       ctx,
	})

	require.Eventually(t, func() bool {
		return f.bus.Subscribers(pubsub.ChannelUserCreated) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, f.bus.Publish(ctx, pubsub.UserCreated{User: grace, SiteIDs: []string{"s1"}}))
	require.NoError(t, f.bus.Publish(ctx, pubsub.UserCreated{User: ada, SiteIDs: []string{"s2"}}))

	select {
	case result := <-results:
		require.Empty(t, result.Errors)
		assert.Equal(t, map[string]interface{}{"userCreated": map[string]interface{}{"email": ada.Email}}, result.Data)
	case <-time.After(time.Second):
		t.Fatal("no subscription result")
	}

	cancel()
	require.Eventually(t, func() bool {
		return f.bus.Subscribers(pubsub.ChannelUserCreated) == 0
	}, time.Second, 10*time.Millisecond)
}
