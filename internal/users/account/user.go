// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the user lifecycle: sign-up, profile updates, locking,
credentials and password recovery.

# Architecture

  - Entities: User, LoginResponse, and the input DTOs of each use case.
  - Domain: Per-site permission grants, audit history and reset mails are
    collaborators reached through small interfaces declared in service.go.
  - Storage: MongoRepository persists users in the "users" collection.
*/
package account

import (
	"strings"
	"time"
)

// # Domain Entities

// Gender is the closed set of values accepted for User.Gender.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// User represents a registered member of one or more sites.
type User struct {
	ID           string `bson:"_id" json:"_id"`
	FirstName    string `bson:"firstName" json:"firstName"`
	LastName     string `bson:"lastName" json:"lastName"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password" json:"-"` // Explicitly omitted from JSON for security.
	Gender       Gender `bson:"gender" json:"gender"`

	// IsActive is false once the account is soft-deleted.
	IsActive bool `bson:"isActive" json:"isActive"`
	// IsLocked blocks login; Reason explains the latest lock.
	IsLocked   bool   `bson:"isLocked" json:"isLocked"`
	Reason     string `bson:"reason,omitempty" json:"reason,omitempty"`
	IsVerified bool   `bson:"isVerified" json:"isVerified"`

	ResetPasswordToken   string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"resetPasswordExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name with a single space.
func (user *User) FullName() string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// ResetTokenExpired reports whether the reset token is unusable at now.
// A token without expiry is treated as expired.
func (user *User) ResetTokenExpired(now time.Time) bool {
	return user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(now)
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// # Inputs

// SiteAccess assigns permission codes to a user on one site.
type SiteAccess struct {
	SiteID      string
	Permissions []string
}

// CreateInput holds the data required to enroll a new member.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Gender    Gender
	Sites     []SiteAccess
}

// UpdateInput carries the optional changes of updateUser. Nil fields are kept.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Password  *string
	Gender    *Gender
	Sites     []SiteAccess
}

// # Field Identifiers

// Input field names used in validation errors.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldGender          = "gender"
	FieldCurrentPassword = "currentpassword"
	FieldSiteID          = "siteId"

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
)
