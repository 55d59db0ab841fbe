// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
)

// passwordCost is the bcrypt work factor for account passwords.
const passwordCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash stored in users.password.
//
// bcrypt only reads 72 bytes, so longer passwords are a validation error
// instead of being silently truncated.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.ValidationError("Password must be at most 72 bytes",
			apperr.FieldError{Field: "password", Message: "must be at most 72 bytes"})
	}
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash. A malformed hash
// never matches.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
