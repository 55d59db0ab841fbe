// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/sitegraph/internal/platform/request"
	"github.com/taibuivan/sitegraph/internal/platform/respond"
)

// Handler serves multipart uploads.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts POST / (the caller guards the route).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.upload)
}

func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	content, header, err := requestutil.FormFile(writer, request, "file", MaxUploadBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer content.Close()

	stored, err := handler.service.Upload(request.Context(), UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     content,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, stored)
}
