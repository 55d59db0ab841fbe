// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]account.User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: map[string]account.User{}}
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &user, nil
}

func (repo *memoryRepository) FindByEmail(_ context.Context, email string) (*account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryRepository) FindByResetToken(_ context.Context, token string) (*account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if token != "" && user.ResetPasswordToken == token {
			return &user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryRepository) List(_ context.Context, window pagination.Window) ([]*account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	users := make([]*account.User, 0, len(repo.users))
	for _, user := range repo.users {
		user := user
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	if window.Offset >= len(users) {
		return []*account.User{}, nil
	}
	end := window.Offset + window.Limit
	if end > len(users) {
		end = len(users)
	}
	return users[window.Offset:end], nil
}

func (repo *memoryRepository) Search(context context.Context, _ mongodb.Criteria) ([]*account.User, error) {
	return repo.List(context, pagination.Window{Limit: pagination.MaxLimit})
}

func (repo *memoryRepository) Count(context.Context) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return int64(len(repo.users)), nil
}

func (repo *memoryRepository) Create(_ context.Context, user *account.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}
	repo.users[user.ID] = *user
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, user *account.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	repo.users[user.ID] = *user
	return nil
}

func (repo *memoryRepository) SoftDelete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.IsActive = false
	repo.users[id] = user
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.users, id)
	return nil
}

func (repo *memoryRepository) DeleteAll(context.Context) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	deleted := int64(len(repo.users))
	repo.users = map[string]account.User{}
	return deleted, nil
}

func (repo *memoryRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var cleared int64
	for id, user := range repo.users {
		if user.ResetPasswordExpires != nil && user.ResetPasswordExpires.Before(now) {
			user.ResetPasswordToken = ""
			user.ResetPasswordExpires = nil
			repo.users[id] = user
			cleared++
		}
	}
	return cleared, nil
}

type grantCall struct {
	UserID string
	SiteID string
	Codes  []string
}

// recordingGrants fails every upsert with err, or only those on failSite
// when it is set.
type recordingGrants struct {
	mu       sync.Mutex
	calls    []grantCall
	err      error
	failSite string
	removed  []string
}

func (grants *recordingGrants) Upsert(_ context.Context, userID, siteID string, codes []string) error {
	grants.mu.Lock()
	defer grants.mu.Unlock()
	grants.calls = append(grants.calls, grantCall{UserID: userID, SiteID: siteID, Codes: codes})
	if grants.failSite != "" && siteID != grants.failSite {
		return nil
	}
	return grants.err
}

func (grants *recordingGrants) DeleteByUser(_ context.Context, userID string) (int64, error) {
	grants.mu.Lock()
	defer grants.mu.Unlock()
	grants.removed = append(grants.removed, userID)
	return 1, nil
}

func (grants *recordingGrants) bySite() map[string][]string {
	grants.mu.Lock()
	defer grants.mu.Unlock()
	out := map[string][]string{}
	for _, call := range grants.calls {
		out[call.SiteID] = call.Codes
	}
	return out
}

type recordingHistory struct {
	lines []string
}

func (history *recordingHistory) Record(_ context.Context, _ string, description string) error {
	history.lines = append(history.lines, description)
	return nil
}

type recordingNotifier struct {
	notified []*account.User
}

func (notifier *recordingNotifier) NotifyPasswordReset(_ context.Context, user *account.User) error {
	notifier.notified = append(notifier.notified, user)
	return nil
}

type staticIssuer struct{}

func (staticIssuer) GenerateAccessToken(userID, _ string, _ time.Duration) (string, error) {
	return "token-" + userID, nil
}
