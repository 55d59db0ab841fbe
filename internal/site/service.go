// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package site

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/slug"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// Service implements the site use cases.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: func() time.Time { return time.Now().UTC() }}
}

func (service *Service) List(context context.Context, window pagination.Window) ([]*Site, error) {
	return service.repository.List(context, window)
}

func (service *Service) Search(context context.Context, criteria mongodb.Criteria) ([]*Site, error) {
	return service.repository.Search(context, criteria)
}

func (service *Service) FindByID(context context.Context, id string) (*Site, error) {
	return service.repository.FindByID(context, id)
}

// SiteName returns the name of siteID. It satisfies the grant package's lookup.
func (service *Service) SiteName(context context.Context, siteID string) (string, error) {
	site, err := service.repository.FindByID(context, siteID)
	if err != nil {
		return "", err
	}
	return site.Name, nil
}

/*
Create registers a new site.

Description: When no slug is given it is derived from the name, so
"Café Tokyo" becomes "cafe-tokyo".

Returns:
  - *Site: The stored site
  - error: Validation, or Conflict when the slug is taken
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Site, error) {
	name := strings.TrimSpace(input.Name)
	siteSlug := strings.TrimSpace(input.Slug)
	if siteSlug == "" {
		siteSlug = slug.From(name)
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldName, name).
		MaxLen(FieldName, name, 120).
		Slug(FieldSlug, siteSlug)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureSlugFree(context, siteSlug, ""); err != nil {
		return nil, err
	}

	currentTime := service.now()
	site := &Site{
		ID:        uuid.New(),
		Name:      name,
		Slug:      siteSlug,
		CreatedAt: currentTime,
		UpdatedAt: currentTime,
	}
	if err := service.repository.Create(context, site); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("site_created", slog.String("site_id", site.ID), slog.String("slug", siteSlug))
	return site, nil
}

// Update renames a site or changes its slug.
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Site, error) {
	site, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		validator.Required(FieldName, name).MaxLen(FieldName, name, 120)
		site.Name = name
	}
	if input.Slug != nil {
		siteSlug := strings.TrimSpace(*input.Slug)
		validator.Slug(FieldSlug, siteSlug)
		site.Slug = siteSlug
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Slug != nil {
		if err := service.ensureSlugFree(context, site.Slug, site.ID); err != nil {
			return nil, err
		}
	}

	site.UpdatedAt = service.now()
	if err := service.repository.Update(context, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (service *Service) Delete(context context.Context, id string) error {
	return service.repository.Delete(context, id)
}

func (service *Service) ensureSlugFree(context context.Context, siteSlug, selfID string) error {
	existing, err := service.repository.FindBySlug(context, siteSlug)
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.Conflict("Conflict: Slug")
	case err != nil && !dberr.IsNotFound(err):
		return err
	}
	return nil
}
