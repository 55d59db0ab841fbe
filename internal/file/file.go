// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package file stores uploaded files and their metadata.

The bytes live in a [Storage] (local disk under STATIC_DIR, or an S3 bucket);
the "file" collection keeps one File document per upload with the public path
the object can be fetched from.
*/
package file

import "time"

// File is the metadata of one upload.
type File struct {
	ID          string    `bson:"_id" json:"_id"`
	Filename    string    `bson:"filename" json:"filename"`
	Path        string    `bson:"path" json:"path"`
	ContentType string    `bson:"contentType" json:"contentType"`
	Size        int64     `bson:"size" json:"size"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`

	// Key locates the object inside the storage backend.
	Key string `bson:"key" json:"-"`
}

// MaxUploadBytes caps one multipart upload.
const MaxUploadBytes = 10 << 20
