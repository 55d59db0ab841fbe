// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailing

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/sitegraph/internal/platform/async"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// SendTimeout bounds one background delivery.
const SendTimeout = 30 * time.Second

// Options configures the links embedded in mails.
type Options struct {
	// PublicURL is the externally reachable base, e.g. http://example.com:8080.
	PublicURL string
	// TrackingPath is the GraphQL endpoint path the tracking route hangs off.
	TrackingPath string
}

// Service records and sends account mails.
type Service struct {
	repository Repository
	mailer     Mailer
	options    Options
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, mailer Mailer, options Options, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		mailer:     mailer,
		options:    options,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

/*
NotifyPasswordReset records a FORGOT_PASSWORD mail and sends it in the
background.

Description: Only the record is written synchronously. Delivery failures are
logged and never reach the caller, so forgotPassword answers at once.

Parameters:
  - context: context.Context
  - user: *account.User (with ResetPasswordToken set)

Returns:
  - error: Storage failures while recording the mail
*/
func (service *Service) NotifyPasswordReset(context context.Context, user *account.User) error {
	email, err := service.record(context, user.ID, TypeForgotPassword)
	if err != nil {
		return err
	}

	message := Message{
		To:      user.Email,
		Subject: "Reset your password",
		HTML:    service.resetBody(user, email.ID),
	}

	async.SafeGo(context, SendTimeout, "mail_forgot_password", ctxutil.GetLogger(context), service.deliver(message))

	ctxutil.GetLogger(context).Info("mail_queued",
		slog.String("email_id", email.ID),
		slog.String("type", string(email.Type)),
	)
	return nil
}

// deliver binds message to the mailer for a background task.
func (service *Service) deliver(message Message) func(context.Context) error {
	return func(taskCtx context.Context) error {
		return service.mailer.Send(taskCtx, message)
	}
}

// MarkOpened flags the mail as opened. Called by the tracking pixel route.
func (service *Service) MarkOpened(context context.Context, id string) error {
	return service.repository.MarkOpened(context, id, service.now())
}

func (service *Service) List(context context.Context, window pagination.Window) ([]*Email, error) {
	return service.repository.List(context, window)
}

// TrackingURL is the pixel address embedded in the mail with id.
func (service *Service) TrackingURL(id string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(service.options.PublicURL, "/"),
		strings.Trim(service.options.TrackingPath, "/"),
		id,
	)
}

func (service *Service) record(context context.Context, userID string, mailType Type) (*Email, error) {
	currentTime := service.now()
	email := &Email{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      mailType,
		CreatedAt: currentTime,
		UpdatedAt: currentTime,
	}
	if err := service.repository.Create(context, email); err != nil {
		return nil, err
	}
	return email, nil
}

func (service *Service) resetBody(user *account.User, emailID string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "<p>Hello %s,</p>", html.EscapeString(user.FullName()))
	builder.WriteString("<p>Use the code below to reset your password. It expires soon.</p>")
	fmt.Fprintf(&builder, "<p><strong>%s</strong></p>", html.EscapeString(user.ResetPasswordToken))
	fmt.Fprintf(&builder, `<img src="%s" width="1" height="1" alt="" />`, html.EscapeString(service.TrackingURL(emailID)))
	return builder.String()
}
