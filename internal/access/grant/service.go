// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package grant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/slice"
)

// SiteNamer resolves the display name of a site.
type SiteNamer interface {
	SiteName(context context.Context, siteID string) (string, error)
}

// Service implements the grant use cases.
type Service struct {
	repository Repository
	sites      SiteNamer
	now        func() time.Time
}

// NewService constructs a new [Service]. sites may be nil, in which case
// grants written without an explicit name keep an empty siteName.
func NewService(repository Repository, sites SiteNamer) *Service {
	return &Service{
		repository: repository,
		sites:      sites,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

/*
Upsert stores codes as the grant of userID on siteID.

Description: The site name is looked up and copied into the grant. An unknown
site is not an error; the grant is stored with an empty name.

Parameters:
  - context: context.Context
  - userID, siteID: string
  - codes: []string (duplicates are dropped, order kept)
*/
func (service *Service) Upsert(context context.Context, userID, siteID string, codes []string) error {
	siteName, err := service.siteName(context, siteID)
	if err != nil {
		return err
	}
	_, err = service.repository.Upsert(context, userID, siteID, siteName, Infos(codes), service.now())
	return err
}

// Create is the createUserPermission mutation. It goes through the same
// upsert as user sign-up so a second call for the same key updates the first.
func (service *Service) Create(context context.Context, input CreateInput, codes []string) (*UserPermission, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUserID, input.UserID).Required(FieldSiteID, input.SiteID)
	for _, code := range codes {
		validator.PermissionCode(FieldPermissions, code)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	siteName := strings.TrimSpace(input.SiteName)
	if siteName == "" {
		var err error
		if siteName, err = service.siteName(context, input.SiteID); err != nil {
			return nil, err
		}
	}

	grant, err := service.repository.Upsert(context, input.UserID, input.SiteID, siteName, Infos(codes), service.now())
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("grant_upserted",
		slog.String("user_id", input.UserID),
		slog.String("site_id", input.SiteID),
		slog.Int("codes", len(grant.Permissions)),
	)
	return grant, nil
}

// Update rewrites the name or codes of an existing grant.
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*UserPermission, error) {
	validator := &validate.Validator{}
	for _, code := range input.Permissions {
		validator.PermissionCode(FieldPermissions, code)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	grant, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.SiteName != nil {
		grant.SiteName = strings.TrimSpace(*input.SiteName)
	}
	if input.Permissions != nil {
		grant.Permissions = Infos(input.Permissions)
	}
	grant.UpdatedAt = service.now()

	if err := service.repository.Update(context, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

func (service *Service) FindByID(context context.Context, id string) (*UserPermission, error) {
	return service.repository.FindByID(context, id)
}

func (service *Service) FindByUserAndSite(context context.Context, userID, siteID string) (*UserPermission, error) {
	return service.repository.FindByUserAndSite(context, userID, siteID)
}

// ListByUser returns every grant of userID.
func (service *Service) ListByUser(context context.Context, userID string) ([]*UserPermission, error) {
	return service.repository.ListByUser(context, userID)
}

func (service *Service) List(context context.Context, window pagination.Window) ([]*UserPermission, error) {
	return service.repository.List(context, window)
}

func (service *Service) Delete(context context.Context, id string) error {
	return service.repository.Delete(context, id)
}

// DeleteByUser drops every grant of userID.
func (service *Service) DeleteByUser(context context.Context, userID string) (int64, error) {
	return service.repository.DeleteByUser(context, userID)
}

func (service *Service) DeleteAll(context context.Context) (int64, error) {
	return service.repository.DeleteAll(context)
}

/*
CodesFor returns the flattened codes a user holds.

Description: With a siteID only that site's grant counts. An empty siteID
flattens every grant of the user. No grant at all yields an empty set.
*/
func (service *Service) CodesFor(context context.Context, userID, siteID string) (map[string]struct{}, error) {
	var grants []*UserPermission
	if siteID != "" {
		grant, err := service.repository.FindByUserAndSite(context, userID, siteID)
		switch {
		case err == nil:
			grants = []*UserPermission{grant}
		case !dberr.IsNotFound(err):
			return nil, err
		}
	} else {
		var err error
		if grants, err = service.repository.ListByUser(context, userID); err != nil {
			return nil, err
		}
	}

	return slice.FlatSet(grants, (*UserPermission).Codes), nil
}

func (service *Service) siteName(context context.Context, siteID string) (string, error) {
	if service.sites == nil {
		return "", nil
	}
	name, err := service.sites.SiteName(context, siteID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return name, nil
}
