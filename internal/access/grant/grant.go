// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package grant stores which permission codes a user holds on each site.

# Invariants

  - At most one UserPermission exists per (UserID, SiteID). The unique index
    from migration 0001 enforces it and every write path is an upsert.
  - Permissions keep the order they were given in, without duplicates.
*/
package grant

import (
	"time"

	"github.com/taibuivan/sitegraph/pkg/slice"
)

// PermissionInfo is one code held inside a grant.
type PermissionInfo struct {
	Code string `bson:"code" json:"code"`
}

// UserPermission is the grant of a user on one site.
type UserPermission struct {
	ID          string           `bson:"_id" json:"_id"`
	UserID      string           `bson:"userId" json:"userId"`
	SiteID      string           `bson:"siteId" json:"siteId"`
	SiteName    string           `bson:"siteName" json:"siteName"`
	Permissions []PermissionInfo `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Codes returns the permission codes of the grant.
func (grant *UserPermission) Codes() []string {
	return slice.Map(grant.Permissions, func(info PermissionInfo) string { return info.Code })
}

// CreateInput is the payload of createUserPermission.
type CreateInput struct {
	UserID   string
	SiteID   string
	SiteName string
}

// UpdateInput carries optional changes. Nil fields are kept.
type UpdateInput struct {
	SiteName    *string
	Permissions []string
}

const (
	FieldUserID      = "userId"
	FieldSiteID      = "siteId"
	FieldPermissions = "permissions"
)

// Infos turns codes into PermissionInfo entries, dropping duplicates and
// keeping the first occurrence.
func Infos(codes []string) []PermissionInfo {
	return slice.Map(slice.Unique(codes), func(code string) PermissionInfo {
		return PermissionInfo{Code: code}
	})
}
