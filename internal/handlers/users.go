package handlers

import (
	"context"
	"net/http"

	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// SocialAPI is the subset of *services.FollowService the user routes need.
type SocialAPI interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
	GetFollowers(ctx context.Context, uid string) ([]models.PublicUser, error)
	GetFollowing(ctx context.Context, uid string) ([]models.PublicUser, error)
	Follow(ctx context.Context, actorID string, req services.FollowRequest) error
	Unfollow(ctx context.Context, actorID string, req services.FollowRequest) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	UpdateProfile(ctx context.Context, uid string, upd services.ProfileUpdate) (*models.AccountView, error)
}

type FollowRequestBody struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

type UserHandler struct {
	social SocialAPI
	errs   *ErrorWriter
}

func NewUserHandler(social SocialAPI, errs *ErrorWriter) *UserHandler {
	return &UserHandler{social: social, errs: errs}
}

// GetProfile returns public fields plus follower/following counts
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.social.GetProfile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: profile})
}

func (h *UserHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.social.GetFollowers(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: users})
}

func (h *UserHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.social.GetFollowing(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: users})
}

// IsFollowing answers whether userId follows targetId
func (h *UserHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	ok, err := h.social.IsFollowing(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "targetId"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]bool{"following": ok}})
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.mutateEdge(w, r, h.social.Follow, services.FollowedMessage)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.mutateEdge(w, r, h.social.Unfollow, services.UnfollowedMessage)
}

func (h *UserHandler) mutateEdge(w http.ResponseWriter, r *http.Request, op func(context.Context, string, services.FollowRequest) error, message string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not authorized, no token")
		return
	}
	var body FollowRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	err := op(r.Context(), user.ID, services.FollowRequest{
		FollowerID:  body.FollowerID,
		FollowingID: body.FollowingID,
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, true, message)
}

// UpdateProfile changes the caller's display name and photo URL
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not authorized, no token")
		return
	}
	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	account, err := h.social.UpdateProfile(r.Context(), user.ID, services.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: account})
}
