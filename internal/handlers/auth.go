package handlers

import (
	"context"
	"net/http"

	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// AuthAPI is the subset of *services.AuthService the auth routes need.
type AuthAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	CurrentUser(ctx context.Context, uid string) (*models.AccountView, error)
	Logout() string
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (*services.AuthResult, error)
}

// Register Request
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// Login Request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type AuthHandler struct {
	auth AuthAPI
	errs *ErrorWriter
}

func NewAuthHandler(auth AuthAPI, errs *ErrorWriter) *AuthHandler {
	return &AuthHandler{auth: auth, errs: errs}
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	result, err := h.auth.Register(r.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Token: result.Token, User: result.User})
}

// Login handles email/password sign in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Token: result.Token, User: result.User})
}

// Me returns the account behind the bearer token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not authorized, no token")
		return
	}

	account, err := h.auth.CurrentUser(r.Context(), user.ID)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: account})
}

// Logout only acknowledges; the client drops its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: h.auth.Logout(),
		Data:    struct{}{},
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	message, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, true, message)
}

// ResetPassword consumes the token from the URL and signs the user in
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	result, err := h.auth.ResetPassword(r.Context(), chi.URLParam(r, "resetToken"), req.Password)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Token: result.Token, User: result.User})
}
