// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package site manages the tenants of sitegraph. A site is what the
// "currentsite" header selects and what grants are scoped to.
package site

import "time"

// Site is one tenant.
type Site struct {
	ID        string    `bson:"_id" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	Slug      string    `bson:"slug" json:"slug"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateInput holds the fields of a new site. An empty Slug is derived from Name.
type CreateInput struct {
	Name string
	Slug string
}

// UpdateInput carries optional changes. Nil fields are kept.
type UpdateInput struct {
	Name *string
	Slug *string
}

const (
	FieldName = "name"
	FieldSlug = "slug"
)
