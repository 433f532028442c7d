package handlers

import (
	"context"
	"net/http"

	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// VideoAPI is satisfied by *services.VideoService.
type VideoAPI interface {
	Publish(ctx context.Context, uid, title, videoURL string) (*models.Video, error)
	ListByUser(ctx context.Context, uid string) ([]models.Video, error)
}

type VideoHandler struct {
	uploads *UploadHandler
	videos  VideoAPI
	errs    *ErrorWriter
}

// NewVideoHandler returns a handler whose Publish answers 503 when uploader is nil.
func NewVideoHandler(uploader Uploader, videos VideoAPI, errs *ErrorWriter) *VideoHandler {
	return &VideoHandler{uploads: NewUploadHandler(uploader, nil, errs), videos: videos, errs: errs}
}

// Publish takes a multipart file and title, uploads the file and records the post
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not authorized, no token")
		return
	}
	fileHeader, ok := h.uploads.formFile(w, r)
	if !ok {
		return
	}

	title, err := services.NormalizeVideoTitle(r.FormValue("title"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	url, err := h.uploads.uploader.UploadFileFromHeader(r.Context(), fileHeader, services.VideoFolder)
	if err != nil {
		h.errs.Logger.Error("video upload failed", "uid", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to upload file")
		return
	}

	video, err := h.videos.Publish(r.Context(), user.ID, title, url)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "Video uploaded successfully", Data: video})
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: videos})
}
