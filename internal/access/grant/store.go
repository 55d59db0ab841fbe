// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package grant

import (
	"context"
	"time"

	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// Repository defines the persistence contract for grants.
type Repository interface {
	/*
		Upsert writes the grant of userID on siteID in one atomic operation.

		Description: The existing document is updated in place; a missing one is
		inserted. Concurrent callers on the same key never produce two documents.

		Returns:
		  - *UserPermission: The document after the write
	*/
	Upsert(context context.Context, userID, siteID, siteName string, permissions []PermissionInfo, now time.Time) (*UserPermission, error)

	FindByID(context context.Context, id string) (*UserPermission, error)
	FindByUserAndSite(context context.Context, userID, siteID string) (*UserPermission, error)

	// ListByUser returns every grant of userID, across sites.
	ListByUser(context context.Context, userID string) ([]*UserPermission, error)
	List(context context.Context, window pagination.Window) ([]*UserPermission, error)

	Update(context context.Context, grant *UserPermission) error
	Delete(context context.Context, id string) error

	// DeleteByUser removes every grant of userID.
	DeleteByUser(context context.Context, userID string) (int64, error)
	DeleteAll(context context.Context) (int64, error)
}
