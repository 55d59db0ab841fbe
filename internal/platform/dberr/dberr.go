// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level document-store errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
)

// Wrap inspects a driver error and wraps it into a meaningful [apperr.AppError].
// It hides internal driver details from the client while classifying the error type.
//
// resource names the entity in NotFound and Conflict messages (e.g. "User").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(resource)
	}

	// 2. Unique index violations (E11000)
	if mongo.IsDuplicateKeyError(err) {
		conflict := apperr.Conflict(resource + " already exists")
		conflict.Cause = err
		return conflict
	}

	// 3. Everything else is an Internal Server Error
	return apperr.Internal(err)
}

// IsNotFound reports whether err means "no document matched".
func IsNotFound(err error) bool {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return true
	}
	appError := apperr.As(err)
	return appError != nil && appError.WireCode == apperr.CodeNotFound
}
