// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package permission manages the catalogue of permission codes.

A code (e.g. USER_READ) is what the hasPermission directive checks. Users hold
codes per site through grants (see package grant); this package only owns the
list of codes that exist and their descriptions.
*/
package permission

import "time"

// Permission is one named capability.
type Permission struct {
	ID          string    `bson:"_id" json:"_id"`
	Code        string    `bson:"code" json:"code"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Built-in codes, seeded by migration 0002.
const (
	CodeUserRead         = "USER_READ"
	CodeUserUpdate       = "USER_UPDATE"
	CodeUserDelete       = "USER_DELETE"
	CodeUserLock         = "USER_LOCK"
	CodePermissionRead   = "PERMISSION_READ"
	CodePermissionManage = "PERMISSION_MANAGE"
	CodeSiteManage       = "SITE_MANAGE"
	CodeEmailRead        = "EMAIL_READ"
	CodeFileUpload       = "FILE_UPLOAD"
	CodeFileDelete       = "FILE_DELETE"
	CodeHistoryRead      = "HISTORY_READ"
)

// CreateInput holds the fields of a new permission.
type CreateInput struct {
	Code        string
	Description string
}

// UpdateInput carries optional changes. Nil fields are kept.
type UpdateInput struct {
	Code        *string
	Description *string
}

const (
	FieldCode        = "code"
	FieldDescription = "description"
)
