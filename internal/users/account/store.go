// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// # Repository Contracts

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail retrieves a user by their unique email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByResetToken retrieves the user owning a password reset token.
	FindByResetToken(context context.Context, token string) (*User, error)

	/*
		List returns users newest first, active and inactive alike.

		Parameters:
		  - context: context.Context
		  - window: pagination.Window (offset/limit)
	*/
	List(context context.Context, window pagination.Window) ([]*User, error)

	// Search runs a whitelisted equality search.
	Search(context context.Context, criteria mongodb.Criteria) ([]*User, error)

	// Count returns the number of user documents.
	Count(context context.Context) (int64, error)

	/*
		Create persists a brand new user.

		Returns:
		  - error: apperr.Conflict when the email already exists (unique index)
	*/
	Create(context context.Context, user *User) error

	// Update replaces the stored document with user.
	Update(context context.Context, user *User) error

	// SoftDelete flags an account as inactive.
	SoftDelete(context context.Context, id string) error

	// Delete removes the document of id.
	Delete(context context.Context, id string) error

	// DeleteAll hard-deletes every user and returns how many were removed.
	DeleteAll(context context.Context) (int64, error)

	// ClearExpiredResetTokens unsets reset tokens that expired before now.
	ClearExpiredResetTokens(context context.Context, now time.Time) (int64, error)
}
