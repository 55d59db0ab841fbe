// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package site

import (
	"context"

	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// Repository defines the persistence contract for sites.
type Repository interface {
	List(context context.Context, window pagination.Window) ([]*Site, error)
	Search(context context.Context, criteria mongodb.Criteria) ([]*Site, error)
	FindByID(context context.Context, id string) (*Site, error)
	FindBySlug(context context.Context, slug string) (*Site, error)

	// Create inserts a site. A duplicate slug is apperr.Conflict.
	Create(context context.Context, site *Site) error
	Update(context context.Context, site *Site) error
	Delete(context context.Context, id string) error
}
