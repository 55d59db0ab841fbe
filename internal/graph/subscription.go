// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/pubsub"
)

func (builder *schemaBuilder) subscriptionType() *graphql.Object {
	t := builder.types

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"userCreated": {
				Type: t.user,
				Args: graphql.FieldConfigArgument{
					"siteId": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Subscribe: Chain(builder.subscribe(pubsub.ChannelUserCreated, userCreatedFilter)),
				Resolve: func(params graphql.ResolveParams) (interface{}, error) {
					if event, ok := params.Source.(pubsub.UserCreated); ok {
						return event.User, nil
					}
					return nil, nil
				},
			},
			"userLocked": {
				Type: t.userLocked,
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Subscribe: Chain(builder.subscribe(pubsub.ChannelUserLocked, userLockedFilter)),
				Resolve: func(params graphql.ResolveParams) (interface{}, error) {
					return params.Source, nil
				},
			},
		},
	})
}

// userCreatedFilter delivers every sign-up, or only those granted siteId.
func userCreatedFilter(args map[string]interface{}) pubsub.Filter {
	siteID := stringArg(args, "siteId")
	if siteID == "" {
		return nil
	}
	return func(event pubsub.Event) bool {
		created, ok := event.(pubsub.UserCreated)
		return ok && created.HasSite(siteID)
	}
}

// userLockedFilter delivers every lock change, or only those of userId.
func userLockedFilter(args map[string]interface{}) pubsub.Filter {
	userID := stringArg(args, "userId")
	if userID == "" {
		return nil
	}
	return func(event pubsub.Event) bool {
		locked, ok := event.(pubsub.UserLocked)
		return ok && locked.User != nil && locked.User.ID == userID
	}
}

/*
subscribe opens a bus subscription for one GraphQL subscription field.

Description: graphql-go expects a chan interface{} whose values become the
root of each execution. The channel closes when the operation's context ends,
which deregisters the subscriber from the bus.
*/
func (builder *schemaBuilder) subscribe(
	channel pubsub.Channel,
	filterFor func(args map[string]interface{}) pubsub.Filter,
) graphql.FieldResolveFn {
	return func(params graphql.ResolveParams) (interface{}, error) {
		context := params.Context
		events, err := builder.deps.Bus.Subscribe(context, channel, filterFor(params.Args))
		if err != nil {
			return nil, err
		}

		logger := ctxutil.GetLogger(context).With(slog.String("channel", string(channel)))
		logger.Info("subscription_started")

		out := make(chan interface{})
		go func() {
			defer close(out)
			defer logger.Info("subscription_stopped")

			for event := range events {
				select {
				case out <- event:
				case <-context.Done():
					return
				}
			}
		}()
		return out, nil
	}
}
