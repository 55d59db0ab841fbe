// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "github.com/taibuivan/sitegraph/internal/platform/constants"

// EmailsCollection represents the 'emails' collection
type EmailsCollection struct {
	Collection string
	ID         string
	UserID     string
	Type       string
	IsOpened   string
	CreatedAt  string
	UpdatedAt  string
}

// Emails is the schema definition for emails
var Emails = EmailsCollection{
	Collection: constants.CollectionEmails,
	ID:         FieldID,
	UserID:     "userId",
	Type:       "type",
	IsOpened:   "isOpened",
	CreatedAt:  FieldCreatedAt,
	UpdatedAt:  FieldUpdatedAt,
}

// FilesCollection represents the 'file' collection
type FilesCollection struct {
	Collection  string
	ID          string
	Filename    string
	Path        string
	ContentType string
	Size        string
	CreatedAt   string
	UpdatedAt   string
}

// Files is the schema definition for file
var Files = FilesCollection{
	Collection:  constants.CollectionFiles,
	ID:          FieldID,
	Filename:    "filename",
	Path:        "path",
	ContentType: "contentType",
	Size:        "size",
	CreatedAt:   FieldCreatedAt,
	UpdatedAt:   FieldUpdatedAt,
}

// HistoriesCollection represents the 'histories' collection
type HistoriesCollection struct {
	Collection  string
	ID          string
	UserID      string
	Description string
	CreatedAt   string
}

// Histories is the schema definition for histories
var Histories = HistoriesCollection{
	Collection:  constants.CollectionHistories,
	ID:          FieldID,
	UserID:      "userId",
	Description: "description",
	CreatedAt:   FieldCreatedAt,
}
