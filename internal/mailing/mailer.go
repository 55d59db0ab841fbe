// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailing

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Mailer delivers a message.
type Mailer interface {
	Send(context context.Context, message Message) error
}

// # Log Mailer

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (mailer *LogMailer) Send(_ context.Context, message Message) error {
	mailer.logger.Info("mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.Int("bytes", len(message.HTML)),
	)
	return nil
}

// # SMTP Mailer

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends HTML mail through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	config SMTPConfig
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an [SMTPMailer].
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config, send: smtp.SendMail}
}

/*
Send delivers message.

Description: smtp.SendMail has no context parameter; the caller bounds the
whole task with a timeout instead. A cancelled context is still honored before
dialing.
*/
func (mailer *SMTPMailer) Send(context context.Context, message Message) error {
	if err := context.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if mailer.config.Username != "" {
		auth = smtp.PlainAuth("", mailer.config.Username, mailer.config.Password, mailer.config.Host)
	}

	address := net.JoinHostPort(mailer.config.Host, strconv.Itoa(mailer.config.Port))
	if err := mailer.send(address, auth, mailer.config.From, []string{message.To}, mailer.compose(message)); err != nil {
		return fmt.Errorf("smtp_send_failed: %w", err)
	}
	return nil
}

func (mailer *SMTPMailer) compose(message Message) []byte {
	var builder strings.Builder
	builder.WriteString("From: " + mailer.config.From + "\r\n")
	builder.WriteString("To: " + message.To + "\r\n")
	builder.WriteString("Subject: " + message.Subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(message.HTML)
	return []byte(builder.String())
}
