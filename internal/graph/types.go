// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/access/grant"
	"github.com/taibuivan/sitegraph/internal/access/permission"
	"github.com/taibuivan/sitegraph/internal/file"
	"github.com/taibuivan/sitegraph/internal/history"
	"github.com/taibuivan/sitegraph/internal/mailing"
	"github.com/taibuivan/sitegraph/internal/pubsub"
	"github.com/taibuivan/sitegraph/internal/site"
	"github.com/taibuivan/sitegraph/internal/users/account"
)

// # Field Helpers

// sourceOf extracts the parent object of a field, unwrapping search results.
func sourceOf[T any](source interface{}) (T, bool) {
	if result, ok := source.(SearchResult); ok {
		source = result.Value()
	}
	value, ok := source.(T)
	return value, ok
}

// prop declares a field read from the parent object.
func prop[T any](output graphql.Output, get func(T) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: output,
		Resolve: func(params graphql.ResolveParams) (interface{}, error) {
			parent, ok := sourceOf[T](params.Source)
			if !ok {
				return nil, nil
			}
			return get(parent), nil
		},
	}
}

var nonNullString = graphql.NewNonNull(graphql.String)

// # Object Types

// types holds every named output type of the schema.
type types struct {
	gender         *graphql.Enum
	user           *graphql.Object
	permissionInfo *graphql.Object
	userPermission *graphql.Object
	permission     *graphql.Object
	site           *graphql.Object
	email          *graphql.Object
	file           *graphql.Object
	history        *graphql.Object
	loginResponse  *graphql.Object
	userLocked     *graphql.Object
	result         *graphql.Union
}

func (builder *schemaBuilder) buildTypes() {
	t := &builder.types

	t.gender = graphql.NewEnum(graphql.EnumConfig{
		Name: "Gender",
		Values: graphql.EnumValueConfigMap{
			string(account.GenderMale):    &graphql.EnumValueConfig{Value: account.GenderMale},
			string(account.GenderFemale):  &graphql.EnumValueConfig{Value: account.GenderFemale},
			string(account.GenderUnknown): &graphql.EnumValueConfig{Value: account.GenderUnknown},
		},
	})

	t.permissionInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PermissionInfo",
		Fields: graphql.Fields{
			"code": prop(nonNullString, func(info grant.PermissionInfo) interface{} { return info.Code }),
		},
	})

	t.userPermission = graphql.NewObject(graphql.ObjectConfig{
		Name: "UserPermission",
		Fields: graphql.Fields{
			"_id":      prop(nonNullString, func(g *grant.UserPermission) interface{} { return g.ID }),
			"userId":   prop(nonNullString, func(g *grant.UserPermission) interface{} { return g.UserID }),
			"siteId":   prop(nonNullString, func(g *grant.UserPermission) interface{} { return g.SiteID }),
			"siteName": prop(graphql.String, func(g *grant.UserPermission) interface{} { return g.SiteName }),
			"permissions": prop(graphql.NewList(t.permissionInfo), func(g *grant.UserPermission) interface{} {
				return g.Permissions
			}),
			"createdAt": prop(graphql.DateTime, func(g *grant.UserPermission) interface{} { return g.CreatedAt }),
			"updatedAt": prop(graphql.DateTime, func(g *grant.UserPermission) interface{} { return g.UpdatedAt }),
		},
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"_id":        prop(nonNullString, func(u *account.User) interface{} { return u.ID }),
			"firstName":  prop(graphql.String, func(u *account.User) interface{} { return u.FirstName }),
			"lastName":   prop(graphql.String, func(u *account.User) interface{} { return u.LastName }),
			"fullName":   prop(graphql.String, func(u *account.User) interface{} { return u.FullName() }),
			"email":      prop(nonNullString, func(u *account.User) interface{} { return u.Email }),
			"gender":     prop(t.gender, func(u *account.User) interface{} { return u.Gender }),
			"isActive":   prop(graphql.Boolean, func(u *account.User) interface{} { return u.IsActive }),
			"isLocked":   prop(graphql.Boolean, func(u *account.User) interface{} { return u.IsLocked }),
			"reason":     prop(graphql.String, func(u *account.User) interface{} { return u.Reason }),
			"isVerified": prop(graphql.Boolean, func(u *account.User) interface{} { return u.IsVerified }),
			"createdAt":  prop(graphql.DateTime, func(u *account.User) interface{} { return u.CreatedAt }),
			"updatedAt":  prop(graphql.DateTime, func(u *account.User) interface{} { return u.UpdatedAt }),
			"sites": {
				Type:    graphql.NewList(t.userPermission),
				Resolve: Chain(builder.resolveUserSites),
			},
		},
	})

	t.permission = graphql.NewObject(graphql.ObjectConfig{
		Name: "Permission",
		Fields: graphql.Fields{
			"_id":         prop(nonNullString, func(p *permission.Permission) interface{} { return p.ID }),
			"code":        prop(nonNullString, func(p *permission.Permission) interface{} { return p.Code }),
			"description": prop(graphql.String, func(p *permission.Permission) interface{} { return p.Description }),
			"createdAt":   prop(graphql.DateTime, func(p *permission.Permission) interface{} { return p.CreatedAt }),
			"updatedAt":   prop(graphql.DateTime, func(p *permission.Permission) interface{} { return p.UpdatedAt }),
		},
	})

	t.site = graphql.NewObject(graphql.ObjectConfig{
		Name: "Site",
		Fields: graphql.Fields{
			"_id":       prop(nonNullString, func(s *site.Site) interface{} { return s.ID }),
			"name":      prop(nonNullString, func(s *site.Site) interface{} { return s.Name }),
			"slug":      prop(graphql.String, func(s *site.Site) interface{} { return s.Slug }),
			"createdAt": prop(graphql.DateTime, func(s *site.Site) interface{} { return s.CreatedAt }),
			"updatedAt": prop(graphql.DateTime, func(s *site.Site) interface{} { return s.UpdatedAt }),
		},
	})

	t.email = graphql.NewObject(graphql.ObjectConfig{
		Name: "Email",
		Fields: graphql.Fields{
			"_id":       prop(nonNullString, func(e *mailing.Email) interface{} { return e.ID }),
			"userId":    prop(graphql.String, func(e *mailing.Email) interface{} { return e.UserID }),
			"type":      prop(graphql.String, func(e *mailing.Email) interface{} { return string(e.Type) }),
			"isOpened":  prop(graphql.Boolean, func(e *mailing.Email) interface{} { return e.IsOpened }),
			"createdAt": prop(graphql.DateTime, func(e *mailing.Email) interface{} { return e.CreatedAt }),
			"updatedAt": prop(graphql.DateTime, func(e *mailing.Email) interface{} { return e.UpdatedAt }),
		},
	})

	t.file = graphql.NewObject(graphql.ObjectConfig{
		Name: "File",
		Fields: graphql.Fields{
			"_id":         prop(nonNullString, func(f *file.File) interface{} { return f.ID }),
			"filename":    prop(graphql.String, func(f *file.File) interface{} { return f.Filename }),
			"path":        prop(graphql.String, func(f *file.File) interface{} { return f.Path }),
			"contentType": prop(graphql.String, func(f *file.File) interface{} { return f.ContentType }),
			"size":        prop(graphql.Int, func(f *file.File) interface{} { return f.Size }),
			"createdAt":   prop(graphql.DateTime, func(f *file.File) interface{} { return f.CreatedAt }),
			"updatedAt":   prop(graphql.DateTime, func(f *file.File) interface{} { return f.UpdatedAt }),
		},
	})

	t.history = graphql.NewObject(graphql.ObjectConfig{
		Name: "History",
		Fields: graphql.Fields{
			"_id":         prop(nonNullString, func(h *history.History) interface{} { return h.ID }),
			"userId":      prop(graphql.String, func(h *history.History) interface{} { return h.UserID }),
			"description": prop(graphql.String, func(h *history.History) interface{} { return h.Description }),
			"createdAt":   prop(graphql.DateTime, func(h *history.History) interface{} { return h.CreatedAt }),
		},
	})

	t.loginResponse = graphql.NewObject(graphql.ObjectConfig{
		Name: "LoginResponse",
		Fields: graphql.Fields{
			"token": prop(nonNullString, func(r *account.LoginResponse) interface{} { return r.Token }),
		},
	})

	t.userLocked = graphql.NewObject(graphql.ObjectConfig{
		Name: "UserLockEvent",
		Fields: graphql.Fields{
			"user":   prop(t.user, func(e pubsub.UserLocked) interface{} { return e.User }),
			"actor":  prop(t.user, func(e pubsub.UserLocked) interface{} { return e.Actor }),
			"locked": prop(graphql.Boolean, func(e pubsub.UserLocked) interface{} { return e.Locked }),
			"reason": prop(graphql.String, func(e pubsub.UserLocked) interface{} { return e.Reason }),
		},
	})

	t.result = graphql.NewUnion(graphql.UnionConfig{
		Name:  "Result",
		Types: []*graphql.Object{t.user, t.site},
		ResolveType: func(params graphql.ResolveTypeParams) *graphql.Object {
			result, ok := params.Value.(SearchResult)
			if !ok {
				return nil
			}
			switch result.Kind {
			case KindUser:
				return t.user
			case KindSite:
				return t.site
			}
			return nil
		},
	})
}

// resolveUserSites lists the grants of the parent user.
func (builder *schemaBuilder) resolveUserSites(params graphql.ResolveParams) (interface{}, error) {
	user, ok := sourceOf[*account.User](params.Source)
	if !ok || user == nil {
		return nil, nil
	}
	return builder.deps.Grants.ListByUser(params.Context, user.ID)
}
