// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"context"

	"github.com/taibuivan/sitegraph/internal/access/grant"
	"github.com/taibuivan/sitegraph/internal/access/permission"
	"github.com/taibuivan/sitegraph/internal/file"
	"github.com/taibuivan/sitegraph/internal/history"
	"github.com/taibuivan/sitegraph/internal/mailing"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/pubsub"
	"github.com/taibuivan/sitegraph/internal/site"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// # Service Ports
//
// The resolvers only see these interfaces. The concrete services live in
// their domain packages and are wired in cmd/api.

// UserService is implemented by [account.Service].
type UserService interface {
	FindByID(context context.Context, id string) (*account.User, error)
	List(context context.Context, window pagination.Window) ([]*account.User, error)
	Search(context context.Context, criteria mongodb.Criteria) ([]*account.User, error)
	Create(context context.Context, input account.CreateInput) (*account.User, error)
	Update(context context.Context, id string, input account.UpdateInput) (*account.User, error)
	SoftDelete(context context.Context, id string) error
	DeleteAll(context context.Context) (int64, error)
	ToggleLock(context context.Context, id, reason string, actor *account.User) (*account.User, error)
	ChangePassword(context context.Context, id, currentPassword, newPassword string) error
	Login(context context.Context, email, password string) (*account.LoginResponse, error)
	ForgotPassword(context context.Context, email string) error
	ResetPassword(context context.Context, token, password string) error
}

// GrantService is implemented by [grant.Service].
type GrantService interface {
	Create(context context.Context, input grant.CreateInput, codes []string) (*grant.UserPermission, error)
	Update(context context.Context, id string, input grant.UpdateInput) (*grant.UserPermission, error)
	FindByID(context context.Context, id string) (*grant.UserPermission, error)
	ListByUser(context context.Context, userID string) ([]*grant.UserPermission, error)
	List(context context.Context, window pagination.Window) ([]*grant.UserPermission, error)
	Delete(context context.Context, id string) error
	DeleteAll(context context.Context) (int64, error)
}

// PermissionService is implemented by [permission.Service].
type PermissionService interface {
	List(context context.Context, window pagination.Window) ([]*permission.Permission, error)
	FindByID(context context.Context, id string) (*permission.Permission, error)
	Create(context context.Context, input permission.CreateInput) (*permission.Permission, error)
	Update(context context.Context, id string, input permission.UpdateInput) (*permission.Permission, error)
	Delete(context context.Context, id string) error
}

// SiteService is implemented by [site.Service].
type SiteService interface {
	List(context context.Context, window pagination.Window) ([]*site.Site, error)
	Search(context context.Context, criteria mongodb.Criteria) ([]*site.Site, error)
	FindByID(context context.Context, id string) (*site.Site, error)
	Create(context context.Context, input site.CreateInput) (*site.Site, error)
	Update(context context.Context, id string, input site.UpdateInput) (*site.Site, error)
	Delete(context context.Context, id string) error
}

// EmailService is implemented by [mailing.Service].
type EmailService interface {
	List(context context.Context, window pagination.Window) ([]*mailing.Email, error)
}

// FileService is implemented by [file.Service].
type FileService interface {
	FindByID(context context.Context, id string) (*file.File, error)
	List(context context.Context, window pagination.Window) ([]*file.File, error)
	Delete(context context.Context, id string) error
}

// HistoryService is implemented by [history.Service].
type HistoryService interface {
	List(context context.Context, window pagination.Window) ([]*history.History, error)
}

// Dependencies is everything the schema resolves against.
type Dependencies struct {
	Users       UserService
	Grants      GrantService
	Permissions PermissionService
	Sites       SiteService
	Emails      EmailService
	Files       FileService
	Histories   HistoryService

	// Bus receives mutation events and feeds subscriptions.
	Bus   pubsub.Bus
	Guard Guard
}
