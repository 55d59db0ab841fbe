// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "github.com/taibuivan/sitegraph/internal/platform/constants"

// SitesCollection represents the 'sites' collection
type SitesCollection struct {
	Collection string
	ID         string
	Name       string
	Slug       string
	CreatedAt  string
	UpdatedAt  string
}

// Sites is the schema definition for sites
var Sites = SitesCollection{
	Collection: constants.CollectionSites,
	ID:         FieldID,
	Name:       "name",
	Slug:       "slug",
	CreatedAt:  FieldCreatedAt,
	UpdatedAt:  FieldUpdatedAt,
}

// Searchable returns the fields clients may filter and sort sites on.
func (c SitesCollection) Searchable() []string {
	return []string{c.ID, c.Name, c.Slug, c.CreatedAt}
}
