// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"

	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// Repository defines the persistence contract for permissions.
type Repository interface {
	List(context context.Context, window pagination.Window) ([]*Permission, error)
	FindByID(context context.Context, id string) (*Permission, error)
	FindByCode(context context.Context, code string) (*Permission, error)

	// Create inserts a permission. A duplicate code is apperr.Conflict.
	Create(context context.Context, permission *Permission) error
	Update(context context.Context, permission *Permission) error
	Delete(context context.Context, id string) error
}
