// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/platform/sec"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// # Contracts

// GrantWriter stores the permission codes of a user on one site.
//
// Implementations must upsert: at most one record exists per (user, site).
type GrantWriter interface {
	Upsert(context context.Context, userID, siteID string, codes []string) error
	DeleteByUser(context context.Context, userID string) (int64, error)
}

// HistoryRecorder appends an audit line attributed to userID.
type HistoryRecorder interface {
	Record(context context.Context, userID, description string) error
}

// ResetNotifier delivers the password reset link of user.
type ResetNotifier interface {
	NotifyPasswordReset(context context.Context, user *User) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID, email string, timeToLive time.Duration) (string, error)
}

// resetTokenBytes is the entropy of a password reset token.
const resetTokenBytes = 32

// rollbackTimeout bounds the cleanup of a failed sign-up.
const rollbackTimeout = 5 * time.Second

// Options carries the lifetimes configured for the service.
type Options struct {
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

// # Service Layer

// Service orchestrates business logic for user accounts.
//
// # Review Process
//
// Login and the reset flow are security critical. Error codes are part of the
// public contract (401 bad credentials, 423 locked, 498 expired reset token).
type Service struct {
	userRepository  Repository
	grantWriter     GrantWriter
	historyRecorder HistoryRecorder
	resetNotifier   ResetNotifier
	tokenIssuer     TokenIssuer
	options         Options
	now             func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo Repository,
	grants GrantWriter,
	histories HistoryRecorder,
	notifier ResetNotifier,
	tokens TokenIssuer,
	options Options,
) *Service {
	return &Service{
		userRepository:  userRepo,
		grantWriter:     grants,
		historyRecorder: histories,
		resetNotifier:   notifier,
		tokenIssuer:     tokens,
		options:         options,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// # Queries

// FindByID returns the user with id or apperr.NotFound.
func (service *Service) FindByID(context context.Context, id string) (*User, error) {
	return service.userRepository.FindByID(context, id)
}

// FindByEmail returns the user owning email or apperr.NotFound.
func (service *Service) FindByEmail(context context.Context, email string) (*User, error) {
	return service.userRepository.FindByEmail(context, normalizeEmail(email))
}

// List returns users newest first.
func (service *Service) List(context context.Context, window pagination.Window) ([]*User, error) {
	return service.userRepository.List(context, window.Clamp())
}

// Search runs a whitelisted equality search over users.
func (service *Service) Search(context context.Context, criteria mongodb.Criteria) ([]*User, error) {
	return service.userRepository.Search(context, criteria)
}

// Count returns the number of registered users.
func (service *Service) Count(context context.Context) (int64, error) {
	return service.userRepository.Count(context)
}

// # Registration Flow

/*
Create validates, hashes, and persists a brand new user account.

Description: The email must be unused. After the user is stored, one grant is
upserted per requested site, concurrently.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *User: Created entity
  - error: Conflict (email taken, nothing persisted), Validation, or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*User, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Gender == "" {
		input.Gender = GenderUnknown
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldFirstName, input.FirstName).
		MaxLen(FieldFirstName, input.FirstName, 100).
		Required(FieldLastName, input.LastName).
		MaxLen(FieldLastName, input.LastName, 100).
		Email(FieldEmail, input.Email).
		Password(FieldPassword, input.Password, MinPasswordLength).
		Custom(FieldGender, !input.Gender.Valid(), "Must be one of: MALE, FEMALE, UNKNOWN")
	validateSites(validator, input.Sites)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Conflict: Email")
	} else if !dberr.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	currentTime := service.now()
	user := &User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Gender:       input.Gender,
		IsActive:     true,
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}

	// The unique index still catches a concurrent sign-up with the same email.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	if err := service.upsertGrants(context, user.ID, input.Sites); err != nil {
		service.discardUser(context, user.ID)
		return nil, err
	}

	ctxutil.GetLogger(context).Info("user_created",
		slog.String("user_id", user.ID),
		slog.Int("sites", len(input.Sites)),
	)

	return user, nil
}

// # Profile Management

/*
Update applies the provided changes to a user and upserts its site grants.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *User: The updated user
  - error: NotFound, Validation or storage failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*User, error) {
	validator := &validate.Validator{}
	if input.FirstName != nil {
		validator.Required(FieldFirstName, *input.FirstName).MaxLen(FieldFirstName, *input.FirstName, 100)
	}
	if input.LastName != nil {
		validator.Required(FieldLastName, *input.LastName).MaxLen(FieldLastName, *input.LastName, 100)
	}
	if input.Password != nil {
		validator.Password(FieldPassword, *input.Password, MinPasswordLength)
	}
	if input.Gender != nil {
		validator.Custom(FieldGender, !input.Gender.Valid(), "Must be one of: MALE, FEMALE, UNKNOWN")
	}
	validateSites(validator, input.Sites)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.Password != nil {
		hashedPassword, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
		}
		user.PasswordHash = hashedPassword
	}
	user.UpdatedAt = service.now()

	if err := service.upsertGrants(context, user.ID, input.Sites); err != nil {
		return nil, err
	}

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SoftDelete deactivates a user. The record and its grants are kept.
func (service *Service) SoftDelete(context context.Context, id string) error {
	if err := service.userRepository.SoftDelete(context, id); err != nil {
		return err
	}
	ctxutil.GetLogger(context).Warn("user_deactivated", slog.String("user_id", id))
	return nil
}

// DeleteAll hard-deletes every user.
func (service *Service) DeleteAll(context context.Context) (int64, error) {
	deleted, err := service.userRepository.DeleteAll(context)
	if err != nil {
		return 0, err
	}
	ctxutil.GetLogger(context).Warn("users_purged", slog.Int64("count", deleted))
	return deleted, nil
}

/*
ToggleLock locks an unlocked user or unlocks a locked one.

Description: Locking stores reason, unlocking clears it. Either way an audit
line attributed to actor is recorded.

Parameters:
  - context: context.Context
  - id: string (target user)
  - reason: string (ignored when unlocking)
  - actor: *User (the authenticated caller)

Returns:
  - *User: The user after the change
  - error: NotFound or storage failures
*/
func (service *Service) ToggleLock(context context.Context, id, reason string, actor *User) (*User, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("currentUser Required")
	}

	user, err := service.userRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	user.IsLocked = !user.IsLocked
	if user.IsLocked {
		user.Reason = strings.TrimSpace(reason)
	} else {
		user.Reason = ""
	}
	user.UpdatedAt = service.now()

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("%s unlocked %s", actor.Email, user.Email)
	if user.IsLocked {
		description = fmt.Sprintf("%s locked %s because %s", actor.Email, user.Email, user.Reason)
	}
	if err := service.historyRecorder.Record(context, actor.ID, description); err != nil {
		ctxutil.GetLogger(context).Warn("history_record_failed", slog.Any("error", err))
	}

	return user, nil
}

// # Credentials

/*
ChangePassword replaces the password after checking the current one.

Returns:
  - error: NotFound, 400 missingCurrentPassword, 400 when unchanged
*/
func (service *Service) ChangePassword(context context.Context, id, currentPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, id)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.ValidationError("missingCurrentPassword",
			apperr.FieldError{Field: FieldCurrentPassword, Message: "missingCurrentPassword"})
	}

	if sec.CheckPasswordHash(newPassword, user.PasswordHash) {
		return validate.RequiredError(FieldPassword, "Your new password must be different from your previous password.")
	}

	validator := &validate.Validator{}
	if err := validator.Password(FieldPassword, newPassword, MinPasswordLength).Err(); err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	user.PasswordHash = hashedPassword
	user.UpdatedAt = service.now()
	return service.userRepository.Update(context, user)
}

/*
Login validates credentials and issues an access token.

Description: Unknown emails and wrong passwords share one message to prevent
account enumeration.

Returns:
  - *LoginResponse: The signed token
  - error: 401 (credentials, inactive), 423 (locked)
*/
func (service *Service) Login(context context.Context, email, password string) (*LoginResponse, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	// Constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	if user.IsLocked {
		return nil, apperr.Locked(user.Reason)
	}

	token, err := service.tokenIssuer.GenerateAccessToken(user.ID, user.Email, service.options.TokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ctxutil.GetLogger(context).Info("user_logged_in", slog.String("user_id", user.ID))

	return &LoginResponse{Token: token}, nil
}

// # Password Recovery

/*
ForgotPassword issues a reset token and mails the reset link.

Returns:
  - error: NotFound for unknown emails, or notifier failures
*/
func (service *Service) ForgotPassword(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		return err
	}

	resetToken, err := sec.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return apperr.Internal(err)
	}

	expires := service.now().Add(service.options.ResetTokenTTL)
	user.ResetPasswordToken = resetToken
	user.ResetPasswordExpires = &expires
	user.UpdatedAt = service.now()

	if err := service.userRepository.Update(context, user); err != nil {
		return err
	}

	return service.resetNotifier.NotifyPasswordReset(context, user)
}

/*
ResetPassword sets a new password for the owner of a reset token.

Description: An expired token fails with 498 and leaves the stored password
untouched. A successful reset consumes the token.

Returns:
  - error: NotFound (unknown token), InvalidToken (expired), Validation
*/
func (service *Service) ResetPassword(context context.Context, token, password string) error {
	user, err := service.userRepository.FindByResetToken(context, token)
	if err != nil {
		return err
	}

	if user.ResetTokenExpired(service.now()) {
		return apperr.InvalidToken("Invalid ResetPasswordToken")
	}

	validator := &validate.Validator{}
	if err := validator.Password(FieldPassword, password, MinPasswordLength).Err(); err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	user.PasswordHash = hashedPassword
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	user.UpdatedAt = service.now()

	return service.userRepository.Update(context, user)
}

// ClearExpiredResetTokens drops reset tokens that can no longer be used.
func (service *Service) ClearExpiredResetTokens(context context.Context, now time.Time) (int64, error) {
	return service.userRepository.ClearExpiredResetTokens(context, now)
}

// # Helpers

// upsertGrants writes one grant per distinct site concurrently. Later entries
// for the same site win, so no two writes race on one (user, site) key.
func (service *Service) upsertGrants(context context.Context, userID string, sites []SiteAccess) error {
	if len(sites) == 0 {
		return nil
	}

	bySite := make(map[string][]string, len(sites))
	order := make([]string, 0, len(sites))
	for _, access := range sites {
		if _, seen := bySite[access.SiteID]; !seen {
			order = append(order, access.SiteID)
		}
		bySite[access.SiteID] = access.Permissions
	}

	group, groupCtx := errgroup.WithContext(context)
	for _, siteID := range order {
		siteID, codes := siteID, bySite[siteID]
		group.Go(func() error {
			return service.grantWriter.Upsert(groupCtx, userID, siteID, codes)
		})
	}

	return group.Wait()
}

// discardUser removes a user whose sign-up failed after the insert, along
// with any grant already written. It runs even when parent is cancelled.
func (service *Service) discardUser(parent context.Context, userID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), rollbackTimeout)
	defer cancel()

	logger := ctxutil.GetLogger(parent)
	if _, err := service.grantWriter.DeleteByUser(cleanupCtx, userID); err != nil {
		logger.Error("user_create_rollback_failed", slog.String("user_id", userID), slog.String("step", "grants"), slog.Any("error", err))
	}
	if err := service.userRepository.Delete(cleanupCtx, userID); err != nil {
		logger.Error("user_create_rollback_failed", slog.String("user_id", userID), slog.String("step", "user"), slog.Any("error", err))
		return
	}
	logger.Warn("user_create_rolled_back", slog.String("user_id", userID))
}

func validateSites(validator *validate.Validator, sites []SiteAccess) {
	for _, access := range sites {
		validator.Required(FieldSiteID, access.SiteID)
		for _, code := range access.Permissions {
			validator.PermissionCode("permissions", code)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
