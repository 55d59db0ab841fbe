// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Storage persists file contents.
type Storage interface {
	// Put writes content under key and returns the public path of the object.
	Put(context context.Context, key string, content io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object. A missing object is not an error.
	Delete(context context.Context, key string) error
}

// # Local Disk

// LocalStorage writes objects below a directory that is also served over HTTP.
type LocalStorage struct {
	root      string
	urlPrefix string
}

/*
NewLocalStorage stores objects in root/uploads and publishes them under
urlPrefix (e.g. "/static").

Returns:
  - error: If the upload directory cannot be created
*/
func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, "uploads"), 0o755); err != nil {
		return nil, fmt.Errorf("file: cannot create upload dir: %w", err)
	}
	return &LocalStorage{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

func (storage *LocalStorage) Put(context context.Context, key string, content io.Reader, _ int64, _ string) (string, error) {
	if err := context.Err(); err != nil {
		return "", err
	}

	target := storage.resolve(key)
	handle, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("local_storage_open_failed: %w", err)
	}

	if _, err := io.Copy(handle, content); err != nil {
		handle.Close()
		os.Remove(target)
		return "", fmt.Errorf("local_storage_write_failed: %w", err)
	}
	if err := handle.Close(); err != nil {
		return "", fmt.Errorf("local_storage_close_failed: %w", err)
	}

	return path.Join(storage.urlPrefix, "uploads", path.Base(key)), nil
}

func (storage *LocalStorage) Delete(_ context.Context, key string) error {
	if err := os.Remove(storage.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local_storage_delete_failed: %w", err)
	}
	return nil
}

// resolve keeps every key inside the uploads directory.
func (storage *LocalStorage) resolve(key string) string {
	return filepath.Join(storage.root, "uploads", filepath.Base(filepath.Clean("/"+key)))
}
