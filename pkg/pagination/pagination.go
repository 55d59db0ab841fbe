// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for list operations.
//
// # Overview
//
// GraphQL list fields take "offset" and "limit" arguments. This package
// standardizes how they are clamped before they reach a store.
package pagination

const (
	// DefaultLimit is the number of items returned if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
)

// Window is an offset/limit slice of a result set.
type Window struct {
	Offset int
	Limit  int
}

// New builds a window from raw arguments. Nil values select the defaults.
func New(offset, limit *int) Window {
	window := Window{Limit: DefaultLimit}
	if offset != nil {
		window.Offset = *offset
	}
	if limit != nil {
		window.Limit = *limit
	}
	return window.Clamp()
}

// Clamp returns a copy with invalid or excessive values replaced.
//
// # Clamping
//
// A negative offset becomes 0. A limit below 1 becomes [DefaultLimit] and a
// limit above [MaxLimit] becomes [MaxLimit].
func (window Window) Clamp() Window {
	if window.Offset < 0 {
		window.Offset = 0
	}
	if window.Limit < 1 {
		window.Limit = DefaultLimit
	}
	if window.Limit > MaxLimit {
		window.Limit = MaxLimit
	}
	return window
}
