// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names the MongoDB collections and document fields of sitegraph.

Stores build their filters and updates from these descriptors instead of
string literals, so a renamed field is changed in one place. The bson tags of
the entities and the index definitions in data/migrations must agree with them.
*/
package schema

// Shared field names present on every document.
const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)
