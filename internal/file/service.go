// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// Service implements the upload use cases.
type Service struct {
	repository Repository
	storage    Storage
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, storage Storage) *Service {
	return &Service{repository: repository, storage: storage, now: func() time.Time { return time.Now().UTC() }}
}

// UploadInput describes one incoming file.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

/*
Upload stores the content and then its metadata.

Description: The object key is a fresh UUID plus the original extension, so
two uploads named "avatar.png" never overwrite each other. When the metadata
insert fails the object is removed again.

Returns:
  - *File: The stored metadata
  - error: Validation, storage or database failures
*/
func (service *Service) Upload(context context.Context, input UploadInput) (*File, error) {
	filename := filepath.Base(strings.TrimSpace(input.Filename))

	validator := &validate.Validator{}
	validator.
		Custom("file", filename == "" || filename == "." || filename == "/", "This field is required").
		MaxLen("file", filename, 255).
		Custom("file", input.Size > MaxUploadBytes, "File too large")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New()
	key := id + strings.ToLower(filepath.Ext(filename))

	publicPath, err := service.storage.Put(context, key, input.Content, input.Size, contentType)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	currentTime := service.now()
	file := &File{
		ID:          id,
		Filename:    filename,
		Path:        publicPath,
		ContentType: contentType,
		Size:        input.Size,
		Key:         key,
		CreatedAt:   currentTime,
		UpdatedAt:   currentTime,
	}
	if err := service.repository.Create(context, file); err != nil {
		if cleanupErr := service.storage.Delete(context, key); cleanupErr != nil {
			ctxutil.GetLogger(context).Warn("file_orphaned", slog.String("key", key), slog.Any("error", cleanupErr))
		}
		return nil, err
	}

	ctxutil.GetLogger(context).Info("file_uploaded",
		slog.String("file_id", id),
		slog.Int64("size", input.Size),
		slog.String("content_type", contentType),
	)
	return file, nil
}

func (service *Service) FindByID(context context.Context, id string) (*File, error) {
	return service.repository.FindByID(context, id)
}

func (service *Service) List(context context.Context, window pagination.Window) ([]*File, error) {
	return service.repository.List(context, window)
}

// Delete removes the metadata first, then the object.
func (service *Service) Delete(context context.Context, id string) error {
	file, err := service.repository.FindByID(context, id)
	if err != nil {
		return err
	}
	if err := service.repository.Delete(context, id); err != nil {
		return err
	}
	if err := service.storage.Delete(context, file.Key); err != nil {
		ctxutil.GetLogger(context).Warn("file_object_delete_failed", slog.String("key", file.Key), slog.Any("error", err))
	}
	return nil
}
