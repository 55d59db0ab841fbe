// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "github.com/taibuivan/sitegraph/internal/platform/constants"

// UsersCollection represents the 'users' collection
type UsersCollection struct {
	Collection           string
	ID                   string
	FirstName            string
	LastName             string
	Email                string
	Password             string
	Gender               string
	IsActive             string
	IsLocked             string
	Reason               string
	IsVerified           string
	ResetPasswordToken   string
	ResetPasswordExpires string
	CreatedAt            string
	UpdatedAt            string
}

// Users is the schema definition for users
var Users = UsersCollection{
	Collection:           constants.CollectionUsers,
	ID:                   FieldID,
	FirstName:            "firstName",
	LastName:             "lastName",
	Email:                "email",
	Password:             "password",
	Gender:               "gender",
	IsActive:             "isActive",
	IsLocked:             "isLocked",
	Reason:               "reason",
	IsVerified:           "isVerified",
	ResetPasswordToken:   "resetPasswordToken",
	ResetPasswordExpires: "resetPasswordExpires",
	CreatedAt:            FieldCreatedAt,
	UpdatedAt:            FieldUpdatedAt,
}

// Searchable returns the fields clients may filter and sort users on.
// Credentials and reset tokens are never searchable.
func (c UsersCollection) Searchable() []string {
	return []string{
		c.ID, c.Email, c.FirstName, c.LastName, c.Gender,
		c.IsActive, c.IsLocked, c.IsVerified, c.CreatedAt,
	}
}
