// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// Service implements the permission catalogue use cases.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: func() time.Time { return time.Now().UTC() }}
}

func (service *Service) List(context context.Context, window pagination.Window) ([]*Permission, error) {
	return service.repository.List(context, window)
}

func (service *Service) FindByID(context context.Context, id string) (*Permission, error) {
	return service.repository.FindByID(context, id)
}

/*
Create registers a new permission code.

Description: The code is trimmed and upper-cased before validation, so
"user_read" and "USER_READ" are the same code.

Returns:
  - *Permission: The stored permission
  - error: Validation, or Conflict when the code exists
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Permission, error) {
	code := normalizeCode(input.Code)

	validator := &validate.Validator{}
	validator.
		Required(FieldCode, code).
		PermissionCode(FieldCode, code).
		MaxLen(FieldDescription, input.Description, 255)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureCodeFree(context, code, ""); err != nil {
		return nil, err
	}

	currentTime := service.now()
	permission := &Permission{
		ID:          uuid.New(),
		Code:        code,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   currentTime,
		UpdatedAt:   currentTime,
	}

	if err := service.repository.Create(context, permission); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("permission_created", slog.String("code", code))
	return permission, nil
}

// Update renames or re-describes a permission. Existing grants keep the old
// code until they are rewritten.
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Permission, error) {
	permission, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		code := normalizeCode(*input.Code)
		validator := &validate.Validator{}
		if err := validator.PermissionCode(FieldCode, code).Err(); err != nil {
			return nil, err
		}
		if err := service.ensureCodeFree(context, code, permission.ID); err != nil {
			return nil, err
		}
		permission.Code = code
	}
	if input.Description != nil {
		permission.Description = strings.TrimSpace(*input.Description)
	}
	permission.UpdatedAt = service.now()

	if err := service.repository.Update(context, permission); err != nil {
		return nil, err
	}
	return permission, nil
}

func (service *Service) Delete(context context.Context, id string) error {
	return service.repository.Delete(context, id)
}

// ensureCodeFree fails with Conflict when code belongs to a permission other than selfID.
func (service *Service) ensureCodeFree(context context.Context, code, selfID string) error {
	existing, err := service.repository.FindByCode(context, code)
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.Conflict("Conflict: Code")
	case err != nil && !dberr.IsNotFound(err):
		return err
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
