// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"context"
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/access/grant"
	"github.com/taibuivan/sitegraph/internal/access/permission"
	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/pubsub"
	"github.com/taibuivan/sitegraph/internal/site"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pointer"
	"github.com/taibuivan/sitegraph/pkg/slice"
)

// # Input Types

func (builder *schemaBuilder) inputTypes() map[string]*graphql.InputObject {
	gender := builder.types.gender

	siteAccess := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SitePermissionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"siteId":      &graphql.InputObjectFieldConfig{Type: nonNullString},
			"permissions": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		},
	})

	return map[string]*graphql.InputObject{
		"createUser": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CreateUserInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"firstName": &graphql.InputObjectFieldConfig{Type: nonNullString},
				"lastName":  &graphql.InputObjectFieldConfig{Type: nonNullString},
				"email":     &graphql.InputObjectFieldConfig{Type: nonNullString},
				"password":  &graphql.InputObjectFieldConfig{Type: nonNullString},
				"gender":    &graphql.InputObjectFieldConfig{Type: gender},
				"sites":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(siteAccess)},
			},
		}),
		"updateUser": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "UpdateUserInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"firstName": &graphql.InputObjectFieldConfig{Type: graphql.String},
				"lastName":  &graphql.InputObjectFieldConfig{Type: graphql.String},
				"password":  &graphql.InputObjectFieldConfig{Type: graphql.String},
				"gender":    &graphql.InputObjectFieldConfig{Type: gender},
				"sites":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(siteAccess)},
			},
		}),
		"login": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "LoginUserInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"email":    &graphql.InputObjectFieldConfig{Type: nonNullString},
				"password": &graphql.InputObjectFieldConfig{Type: nonNullString},
			},
		}),
		"createPermission": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CreatePermissionInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"code":        &graphql.InputObjectFieldConfig{Type: nonNullString},
				"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			},
		}),
		"updatePermission": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "UpdatePermissionInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"code":        &graphql.InputObjectFieldConfig{Type: graphql.String},
				"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			},
		}),
		"createUserPermission": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CreateUserPermissionInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"userId":   &graphql.InputObjectFieldConfig{Type: nonNullString},
				"siteId":   &graphql.InputObjectFieldConfig{Type: nonNullString},
				"siteName": &graphql.InputObjectFieldConfig{Type: graphql.String},
			},
		}),
		"updateUserPermission": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "UpdateUserPermissionInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"siteName":    &graphql.InputObjectFieldConfig{Type: graphql.String},
				"permissions": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
			},
		}),
		"createSite": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CreateSiteInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"name": &graphql.InputObjectFieldConfig{Type: nonNullString},
				"slug": &graphql.InputObjectFieldConfig{Type: graphql.String},
			},
		}),
		"updateSite": graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "UpdateSiteInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"name": &graphql.InputObjectFieldConfig{Type: graphql.String},
				"slug": &graphql.InputObjectFieldConfig{Type: graphql.String},
			},
		}),
	}
}

// inputArg declares a required "input" argument.
func inputArg(input *graphql.InputObject) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)}
}

// # Mutations

func (builder *schemaBuilder) mutationType() *graphql.Object {
	t := builder.types
	deps := builder.deps
	inputs := builder.inputTypes()

	done := func(err error) (interface{}, error) {
		if err != nil {
			return nil, err
		}
		return true, nil
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{

			// # Users

			"createUser": {
				Type:    t.user,
				Args:    graphql.FieldConfigArgument{"input": inputArg(inputs["createUser"])},
				Resolve: Chain(builder.createUser),
			},
			"updateUser": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"_id":   &graphql.ArgumentConfig{Type: nonNullString},
					"input": inputArg(inputs["updateUser"]),
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					_, err := deps.Users.Update(params.Context, stringArg(params.Args, "_id"), account.UpdateInput{
						FirstName: optionalString(input, "firstName"),
						LastName:  optionalString(input, "lastName"),
						Password:  optionalString(input, "password"),
						Gender:    optionalGender(input),
						Sites:     siteAccessList(input["sites"]),
					})
					return done(err)
				}, builder.permitted(permission.CodeUserUpdate)),
			},
			"deleteUser": {
				Type: graphql.Boolean,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Users.SoftDelete(params.Context, stringArg(params.Args, "_id")))
				}, builder.permitted(permission.CodeUserDelete)),
			},
			"deleteUsers": {
				Type: graphql.Boolean,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					_, err := deps.Users.DeleteAll(params.Context)
					return done(err)
				}, builder.permitted(permission.CodeUserDelete)),
			},
			"login": {
				Type: t.loginResponse,
				Args: graphql.FieldConfigArgument{"input": inputArg(inputs["login"])},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					return deps.Users.Login(params.Context, stringArg(input, "email"), stringArg(input, "password"))
				}),
			},
			"lockAndUnlockUser": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"_id":    &graphql.ArgumentConfig{Type: nonNullString},
					"reason": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: Chain(builder.lockAndUnlockUser, builder.permitted(permission.CodeUserLock)),
			},
			"changePassword": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"_id":             &graphql.ArgumentConfig{Type: graphql.String},
					"currentpassword": &graphql.ArgumentConfig{Type: nonNullString},
					"password":        &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					id := pointer.Fallback(pointer.NonZero(stringArg(params.Args, "_id")), authz.SessionFrom(params.Context).UserID())
					return done(deps.Users.ChangePassword(params.Context, id,
						stringArg(params.Args, "currentpassword"),
						stringArg(params.Args, "password"),
					))
				}, builder.authenticated()),
			},
			"forgotPassword": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{"email": &graphql.ArgumentConfig{Type: nonNullString}},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Users.ForgotPassword(params.Context, stringArg(params.Args, "email")))
				}),
			},
			"resetPassword": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"resetPasswordToken": &graphql.ArgumentConfig{Type: nonNullString},
					"password":           &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Users.ResetPassword(params.Context,
						stringArg(params.Args, "resetPasswordToken"),
						stringArg(params.Args, "password"),
					))
				}),
			},

			// # Permissions

			"createPermission": {
				Type: t.permission,
				Args: graphql.FieldConfigArgument{"input": inputArg(inputs["createPermission"])},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					return deps.Permissions.Create(params.Context, permission.CreateInput{
						Code:        stringArg(input, "code"),
						Description: stringArg(input, "description"),
					})
				}, builder.permitted(permission.CodePermissionManage)),
			},
			"updatePermission": {
				Type: t.permission,
				Args: graphql.FieldConfigArgument{
					"_id":   &graphql.ArgumentConfig{Type: nonNullString},
					"input": inputArg(inputs["updatePermission"]),
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					return deps.Permissions.Update(params.Context, stringArg(params.Args, "_id"), permission.UpdateInput{
						Code:        optionalString(input, "code"),
						Description: optionalString(input, "description"),
					})
				}, builder.permitted(permission.CodePermissionManage)),
			},
			"deletePermission": {
				Type: graphql.Boolean,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Permissions.Delete(params.Context, stringArg(params.Args, "_id")))
				}, builder.permitted(permission.CodePermissionManage)),
			},

			// # Grants

			"createUserPermission": {
				Type: t.userPermission,
				Args: graphql.FieldConfigArgument{
					"input":       inputArg(inputs["createUserPermission"]),
					"permissions": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					return deps.Grants.Create(params.Context, grant.CreateInput{
						UserID:   stringArg(input, "userId"),
						SiteID:   stringArg(input, "siteId"),
						SiteName: stringArg(input, "siteName"),
					}, stringList(params.Args["permissions"]))
				}, builder.permitted(permission.CodePermissionManage)),
			},
			"updateUserPermission": {
				Type: t.userPermission,
				Args: graphql.FieldConfigArgument{
					"_id":   &graphql.ArgumentConfig{Type: nonNullString},
					"input": inputArg(inputs["updateUserPermission"]),
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					update := grant.UpdateInput{SiteName: optionalString(input, "siteName")}
					if raw, ok := input["permissions"]; ok && raw != nil {
						update.Permissions = stringList(raw)
					}
					return deps.Grants.Update(params.Context, stringArg(params.Args, "_id"), update)
				}, builder.permitted(permission.CodePermissionManage)),
			},
			"deleteUserPermission": {
				Type: graphql.Boolean,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Grants.Delete(params.Context, stringArg(params.Args, "_id")))
				}, builder.permitted(permission.CodePermissionManage)),
			},
			"deleteUserPermissions": {
				Type: graphql.Boolean,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					_, err := deps.Grants.DeleteAll(params.Context)
					return done(err)
				}, builder.permitted(permission.CodePermissionManage)),
			},

			// # Sites

			"createSite": {
				Type: t.site,
				Args: graphql.FieldConfigArgument{"input": inputArg(inputs["createSite"])},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					return deps.Sites.Create(params.Context, site.CreateInput{
						Name: stringArg(input, "name"),
						Slug: stringArg(input, "slug"),
					})
				}, builder.permitted(permission.CodeSiteManage)),
			},
			"updateSite": {
				Type: t.site,
				Args: graphql.FieldConfigArgument{
					"_id":   &graphql.ArgumentConfig{Type: nonNullString},
					"input": inputArg(inputs["updateSite"]),
				},
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					input := objectArg(params.Args, "input")
					return deps.Sites.Update(params.Context, stringArg(params.Args, "_id"), site.UpdateInput{
						Name: optionalString(input, "name"),
						Slug: optionalString(input, "slug"),
					})
				}, builder.permitted(permission.CodeSiteManage)),
			},
			"deleteSite": {
				Type: graphql.Boolean,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Sites.Delete(params.Context, stringArg(params.Args, "_id")))
				}, builder.permitted(permission.CodeSiteManage)),
			},

			// # Files

			"deleteFile": {
				Type: graphql.Boolean,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return done(deps.Files.Delete(params.Context, stringArg(params.Args, "_id")))
				}, builder.permitted(permission.CodeFileDelete)),
			},
		},
	})
}

/*
createUser is the public sign-up.

Description: After the account and its grants exist, a userCreated event is
published. A failed publish is logged and does not fail the mutation.
*/
func (builder *schemaBuilder) createUser(params graphql.ResolveParams) (interface{}, error) {
	input := objectArg(params.Args, "input")
	sites := siteAccessList(input["sites"])

	user, err := builder.deps.Users.Create(params.Context, account.CreateInput{
		FirstName: stringArg(input, "firstName"),
		LastName:  stringArg(input, "lastName"),
		Email:     stringArg(input, "email"),
		Password:  stringArg(input, "password"),
		Gender:    pointer.Fallback(optionalGender(input), account.GenderUnknown),
		Sites:     sites,
	})
	if err != nil {
		return nil, err
	}

	builder.publish(params.Context, pubsub.UserCreated{
		User:    user,
		SiteIDs: slice.Map(sites, func(access account.SiteAccess) string { return access.SiteID }),
	})
	return user, nil
}

// lockAndUnlockUser flips the lock of a user on behalf of the caller.
func (builder *schemaBuilder) lockAndUnlockUser(params graphql.ResolveParams) (interface{}, error) {
	actor := authz.SessionFrom(params.Context).CurrentUser
	if actor == nil {
		return nil, apperr.InvalidToken("Invalid Token")
	}

	reason := stringArg(params.Args, "reason")
	user, err := builder.deps.Users.ToggleLock(params.Context, stringArg(params.Args, "_id"), reason, actor)
	if err != nil {
		return nil, err
	}

	builder.publish(params.Context, pubsub.UserLocked{
		User:   user,
		Actor:  actor,
		Locked: user.IsLocked,
		Reason: user.Reason,
	})
	return true, nil
}

func (builder *schemaBuilder) publish(context context.Context, event pubsub.Event) {
	if builder.deps.Bus == nil {
		return
	}
	if err := builder.deps.Bus.Publish(context, event); err != nil {
		ctxutil.GetLogger(context).Warn("event_publish_failed",
			slog.String("channel", string(event.Channel())),
			slog.Any("error", err),
		)
	}
}
