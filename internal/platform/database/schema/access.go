// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "github.com/taibuivan/sitegraph/internal/platform/constants"

// PermissionCollection represents the 'permission' collection
type PermissionCollection struct {
	Collection  string
	ID          string
	Code        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// Permission is the schema definition for permission
var Permission = PermissionCollection{
	Collection:  constants.CollectionPermission,
	ID:          FieldID,
	Code:        "code",
	Description: "description",
	CreatedAt:   FieldCreatedAt,
	UpdatedAt:   FieldUpdatedAt,
}

// UserPermissionCollection represents the 'userPermission' collection
type UserPermissionCollection struct {
	Collection  string
	ID          string
	UserID      string
	SiteID      string
	SiteName    string
	Permissions string
	CreatedAt   string
	UpdatedAt   string
}

// UserPermission is the schema definition for userPermission.
// (UserID, SiteID) is unique.
var UserPermission = UserPermissionCollection{
	Collection:  constants.CollectionUserPermission,
	ID:          FieldID,
	UserID:      "userId",
	SiteID:      "siteId",
	SiteName:    "siteName",
	Permissions: "permissions",
	CreatedAt:   FieldCreatedAt,
	UpdatedAt:   FieldUpdatedAt,
}
