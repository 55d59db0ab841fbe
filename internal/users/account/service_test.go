// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/sec"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

type fixture struct {
	service  *account.Service
	repo     *memoryRepository
	grants   *recordingGrants
	history  *recordingHistory
	notifier *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemoryRepository(),
		grants:   &recordingGrants{},
		history:  &recordingHistory{},
		notifier: &recordingNotifier{},
	}
	f.service = account.NewService(f.repo, f.grants, f.history, f.notifier, staticIssuer{},
		account.Options{TokenTTL: time.Hour, ResetTokenTTL: time.Hour})
	return f
}

func (f *fixture) signUp(t *testing.T, email string) *account.User {
	t.Helper()
	user, err := f.service.Create(context.Background(), account.CreateInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "secret1",
	})
	require.NoError(t, err)
	return user
}

func wireCode(t *testing.T, err error) int {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	return ae.WireCode
}

/*
TestService_Create verifies sign-up, grant fan-out and the email conflict path.
*/
func TestService_Create(t *testing.T) {
	t.Run("persists_user_and_grants", func(t *testing.T) {
		f := newFixture()

		user, err := f.service.Create(context.Background(), account.CreateInput{
			FirstName: " Ada ",
			LastName:  "Lovelace",
			Email:     "ADA@example.com",
			Password:  "secret1",
			Sites: []account.SiteAccess{
				{SiteID: "s1", Permissions: []string{"USER_READ"}},
				{SiteID: "s2", Permissions: []string{"USER_READ", "USER_LOCK"}},
				{SiteID: "s1", Permissions: []string{"USER_UPDATE"}},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Ada Lovelace", user.FullName())
		assert.Equal(t, account.GenderUnknown, user.Gender)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "secret1", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("secret1", user.PasswordHash))

		grants := f.grants.bySite()
		assert.Len(t, f.grants.calls, 2)
		assert.Equal(t, []string{"USER_UPDATE"}, grants["s1"])
		assert.Equal(t, []string{"USER_READ", "USER_LOCK"}, grants["s2"])
	})

	t.Run("email_conflict_creates_nothing", func(t *testing.T) {
		f := newFixture()
		f.signUp(t, "ada@example.com")

		_, err := f.service.Create(context.Background(), account.CreateInput{
			FirstName: "Other",
			LastName:  "Person",
			Email:     "ada@example.com",
			Password:  "secret2",
			Sites:     []account.SiteAccess{{SiteID: "s1", Permissions: []string{"USER_READ"}}},
		})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeConflict, wireCode(t, err))
		assert.Equal(t, "Conflict: Email", err.Error())

		total, _ := f.repo.Count(context.Background())
		assert.EqualValues(t, 1, total)
		assert.Empty(t, f.grants.calls)
	})

	t.Run("grant_failure_rolls_back_user", func(t *testing.T) {
		f := newFixture()
		f.grants.err = apperr.Internal(errors.New("write concern timeout"))
		f.grants.failSite = "s2"

		input := account.CreateInput{
			FirstName: "Grace",
			LastName:  "Hopper",
			Email:     "grace@example.com",
			Password:  "secret1",
			Sites: []account.SiteAccess{
				{SiteID: "s1", Permissions: []string{"USER_READ"}},
				{SiteID: "s2", Permissions: []string{"USER_LOCK"}},
			},
		}
		_, err := f.service.Create(context.Background(), input)
		require.Error(t, err)

		total, _ := f.repo.Count(context.Background())
		assert.Zero(t, total)
		require.Len(t, f.grants.removed, 1)

		// The email is free again, so a retry succeeds.
		f.grants.err = nil
		user, err := f.service.Create(context.Background(), input)
		require.NoError(t, err)
		assert.NotEqual(t, f.grants.removed[0], user.ID)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			input account.CreateInput
			field string
		}{
			{"short_password", account.CreateInput{FirstName: "a", LastName: "b", Email: "a@b.co", Password: "123"}, account.FieldPassword},
			{"bad_email", account.CreateInput{FirstName: "a", LastName: "b", Email: "nope", Password: "123456"}, account.FieldEmail},
			{"missing_name", account.CreateInput{LastName: "b", Email: "a@b.co", Password: "123456"}, account.FieldFirstName},
			{"bad_gender", account.CreateInput{FirstName: "a", LastName: "b", Email: "a@b.co", Password: "123456", Gender: "OTHER"}, account.FieldGender},
			{"bad_code", account.CreateInput{FirstName: "a", LastName: "b", Email: "a@b.co", Password: "123456",
				Sites: []account.SiteAccess{{SiteID: "s1", Permissions: []string{"user read"}}}}, "permissions"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture()
				_, err := f.service.Create(context.Background(), tt.input)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			})
		}
	})
}

/*
TestService_Update checks delta updates and grant upserts.
*/
func TestService_Update(t *testing.T) {
	f := newFixture()
	user := f.signUp(t, "ada@example.com")

	firstName := "Augusta"
	gender := account.GenderFemale
	password := "another1"

	updated, err := f.service.Update(context.Background(), user.ID, account.UpdateInput{
		FirstName: &firstName,
		Gender:    &gender,
		Password:  &password,
		Sites:     []account.SiteAccess{{SiteID: "s9", Permissions: []string{"USER_READ"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, account.GenderFemale, updated.Gender)
	assert.True(t, sec.CheckPasswordHash("another1", updated.PasswordHash))
	assert.Equal(t, []string{"USER_READ"}, f.grants.bySite()["s9"])

	_, err = f.service.Update(context.Background(), "missing", account.UpdateInput{FirstName: &firstName})
	assert.Equal(t, apperr.CodeNotFound, wireCode(t, err))
}

/*
TestService_Login walks through the credential and account state checks.
*/
func TestService_Login(t *testing.T) {
	f := newFixture()
	user := f.signUp(t, "ada@example.com")

	t.Run("success", func(t *testing.T) {
		response, err := f.service.Login(context.Background(), "Ada@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "token-"+user.ID, response.Token)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := f.service.Login(context.Background(), "nobody@example.com", "secret1")
		assert.Equal(t, apperr.CodeUnauthorized, wireCode(t, err))
		assert.Equal(t, "Invalid login credentials", err.Error())
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := f.service.Login(context.Background(), "ada@example.com", "wrong!")
		assert.Equal(t, apperr.CodeUnauthorized, wireCode(t, err))
		assert.Equal(t, "Invalid login credentials", err.Error())
	})

	t.Run("locked", func(t *testing.T) {
		actor := f.signUp(t, "admin@example.com")
		_, err := f.service.ToggleLock(context.Background(), user.ID, "spam", actor)
		require.NoError(t, err)

		_, err = f.service.Login(context.Background(), "ada@example.com", "secret1")
		assert.Equal(t, apperr.CodeLocked, wireCode(t, err))
		assert.Contains(t, err.Error(), "spam")

		_, err = f.service.ToggleLock(context.Background(), user.ID, "", actor)
		require.NoError(t, err)
	})

	t.Run("inactive", func(t *testing.T) {
		require.NoError(t, f.service.SoftDelete(context.Background(), user.ID))

		_, err := f.service.Login(context.Background(), "ada@example.com", "secret1")
		assert.Equal(t, apperr.CodeUnauthorized, wireCode(t, err))
	})
}

/*
TestService_ToggleLock ensures the flag flips, the reason follows it and an audit line is recorded.
*/
func TestService_ToggleLock(t *testing.T) {
	f := newFixture()
	actor := f.signUp(t, "admin@example.com")
	user := f.signUp(t, "ada@example.com")

	locked, err := f.service.ToggleLock(context.Background(), user.ID, "abuse", actor)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)
	assert.Equal(t, "abuse", locked.Reason)

	unlocked, err := f.service.ToggleLock(context.Background(), user.ID, "ignored", actor)
	require.NoError(t, err)
	assert.False(t, unlocked.IsLocked)
	assert.Empty(t, unlocked.Reason)

	assert.Equal(t, []string{
		"admin@example.com locked ada@example.com because abuse",
		"admin@example.com unlocked ada@example.com",
	}, f.history.lines)

	_, err = f.service.ToggleLock(context.Background(), user.ID, "x", nil)
	assert.Equal(t, apperr.CodeUnauthenticated, wireCode(t, err))
}

/*
TestService_ChangePassword covers the current-password and same-password checks.
*/
func TestService_ChangePassword(t *testing.T) {
	f := newFixture()
	user := f.signUp(t, "ada@example.com")
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, user.ID, "wrong", "newpass1")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, wireCode(t, err))
	assert.Equal(t, "missingCurrentPassword", err.Error())

	err = f.service.ChangePassword(ctx, user.ID, "secret1", "secret1")
	assert.Equal(t, apperr.CodeValidation, wireCode(t, err))

	require.NoError(t, f.service.ChangePassword(ctx, user.ID, "secret1", "newpass1"))
	stored, _ := f.repo.FindByID(ctx, user.ID)
	assert.True(t, sec.CheckPasswordHash("newpass1", stored.PasswordHash))

	err = f.service.ChangePassword(ctx, "missing", "a", "b")
	assert.Equal(t, apperr.CodeNotFound, wireCode(t, err))
}

/*
TestService_PasswordRecovery runs the forgot/reset flow including the expired token path.
*/
func TestService_PasswordRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_email", func(t *testing.T) {
		f := newFixture()
		err := f.service.ForgotPassword(ctx, "nobody@example.com")
		assert.Equal(t, apperr.CodeNotFound, wireCode(t, err))
	})

	t.Run("reset_with_valid_token", func(t *testing.T) {
		f := newFixture()
		user := f.signUp(t, "ada@example.com")

		require.NoError(t, f.service.ForgotPassword(ctx, "ada@example.com"))
		require.Len(t, f.notifier.notified, 1)

		token := f.notifier.notified[0].ResetPasswordToken
		require.Len(t, token, 64)

		require.NoError(t, f.service.ResetPassword(ctx, token, "brandnew"))

		stored, _ := f.repo.FindByID(ctx, user.ID)
		assert.True(t, sec.CheckPasswordHash("brandnew", stored.PasswordHash))
		assert.Empty(t, stored.ResetPasswordToken)
		assert.Nil(t, stored.ResetPasswordExpires)

		err := f.service.ResetPassword(ctx, token, "again123")
		assert.Equal(t, apperr.CodeNotFound, wireCode(t, err))
	})

	t.Run("expired_token_keeps_password", func(t *testing.T) {
		f := newFixture()
		user := f.signUp(t, "ada@example.com")

		expired := time.Now().Add(-time.Minute)
		user.ResetPasswordToken = "stale"
		user.ResetPasswordExpires = &expired
		require.NoError(t, f.repo.Update(ctx, user))

		err := f.service.ResetPassword(ctx, "stale", "brandnew")
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidToken, wireCode(t, err))

		stored, _ := f.repo.FindByID(ctx, user.ID)
		assert.True(t, sec.CheckPasswordHash("secret1", stored.PasswordHash))

		cleared, err := f.service.ClearExpiredResetTokens(ctx, time.Now())
		require.NoError(t, err)
		assert.EqualValues(t, 1, cleared)
	})
}

/*
TestService_ListAndDelete checks ordering, soft delete visibility and purge.
*/
func TestService_ListAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.signUp(t, "a@example.com")
	time.Sleep(2 * time.Millisecond)
	second := f.signUp(t, "b@example.com")

	require.NoError(t, f.service.SoftDelete(ctx, first.ID))

	users, err := f.service.List(ctx, pagination.New(nil, nil))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.False(t, users[1].IsActive)

	deleted, err := f.service.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	err = f.service.SoftDelete(ctx, first.ID)
	assert.Equal(t, apperr.CodeNotFound, wireCode(t, err))
}
