// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/sitegraph/internal/platform/request"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// pixel is a transparent 1x1 GIF.
var pixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the open-tracking pixel.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts GET /{id} under the GraphQL path.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{id}", handler.track)
}

// track always answers with the pixel. Unknown ids are logged only, so mail
// clients never show a broken image.
func (handler *Handler) track(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")
	if !uuid.Valid(id) {
		ctxutil.GetLogger(request.Context()).Debug("mail_tracking_malformed_id", slog.String("email_id", id))
	} else if err := handler.service.MarkOpened(request.Context(), id); err != nil {
		ctxutil.GetLogger(request.Context()).Debug("mail_tracking_miss",
			slog.String("email_id", id),
			slog.Any("error", err),
		)
	}

	writer.Header().Set("Content-Type", "image/gif")
	writer.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(pixel)
}
