// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
FormFile extracts one uploaded file from a multipart request.

Parameters:
  - request: *http.Request
  - field: The multipart field name
  - maxBytes: Upper bound for the whole request body

Returns:
  - multipart.File: Open handle, the caller must close it
  - *multipart.FileHeader: Filename, size and content type
  - error: apperr.ValidationError if the field is missing or the body too large
*/
func FormFile(writer http.ResponseWriter, request *http.Request, field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	if err := request.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperr.ValidationError("Upload exceeds the size limit")
		}
		return nil, nil, apperr.ValidationError("Invalid multipart payload")
	}

	file, header, err := request.FormFile(field)
	if err != nil {
		return nil, nil, validate.RequiredError(field, "A file is required")
	}

	return file, header, nil
}
