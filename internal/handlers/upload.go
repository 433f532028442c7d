package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/foodieshare/foodieshare-backend/internal/services"
)

const maxUploadSize = 10 << 20 // 10MB

// Uploader is satisfied by *services.CloudinaryService.
type Uploader interface {
	UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error)
}

type UploadHandler struct {
	uploader Uploader
	social   SocialAPI
	errs     *ErrorWriter
}

// NewUploadHandler returns a handler that answers 503 when uploader is nil.
func NewUploadHandler(uploader Uploader, social SocialAPI, errs *ErrorWriter) *UploadHandler {
	return &UploadHandler{uploader: uploader, social: social, errs: errs}
}

// UploadFile handles file uploads to Cloudinary. ?folder= picks one of the
// public folders; anything else is rejected.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	fileHeader, ok := h.formFile(w, r)
	if !ok {
		return
	}

	folder, ok := services.UploadFolder(r.URL.Query().Get("folder"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, false, "Invalid upload folder")
		return
	}

	url, err := h.uploader.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		h.errs.Logger.Error("upload failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
	})
}

// UploadProfilePhoto stores the uploaded image as the caller's photoURL
func (h *UploadHandler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not authorized, no token")
		return
	}
	fileHeader, ok := h.formFile(w, r)
	if !ok {
		return
	}

	url, err := h.uploader.UploadFileFromHeader(r.Context(), fileHeader, services.ProfilePhotoFolder)
	if err != nil {
		h.errs.Logger.Error("profile photo upload failed", "uid", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to upload file")
		return
	}

	account, err := h.social.UpdateProfile(r.Context(), user.ID, services.ProfileUpdate{PhotoURL: &url})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: account})
}

func (h *UploadHandler) formFile(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, bool) {
	if h.uploader == nil {
		h.errs.Write(w, r, services.ErrServiceDisabled)
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Failed to parse form")
		return nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "No file provided")
		return nil, false
	}
	file.Close()
	return fileHeader, true
}
