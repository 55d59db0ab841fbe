// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailing sends account mails and tracks whether they were opened.

# Flow

 1. A use case (e.g. forgotPassword) calls the service.
 2. An Email record is stored first, so its ID can be embedded in the body as
    a 1x1 tracking image pointing at GET /<END_POINT>/{id}.
 3. The message is delivered in the background through a [Mailer].
 4. Loading the image marks the record as opened.
*/
package mailing

import "time"

// Type classifies a sent mail.
type Type string

const (
	TypeVerifyEmail    Type = "VERIFY_EMAIL"
	TypeForgotPassword Type = "FORGOT_PASSWORD"
)

// Email is the record of one sent mail.
type Email struct {
	ID        string    `bson:"_id" json:"_id"`
	UserID    string    `bson:"userId" json:"userId"`
	Type      Type      `bson:"type" json:"type"`
	IsOpened  bool      `bson:"isOpened" json:"isOpened"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Message is an outgoing mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}
