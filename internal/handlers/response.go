package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/foodieshare/foodieshare-backend/internal/services"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	User    interface{} `json:"user,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	URL     string      `json:"url,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, Response{Success: success, Message: message})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ErrorWriter turns service errors into the JSON envelope.
// Raw error text is only exposed when Expose is set (non-production).
type ErrorWriter struct {
	Expose bool
	Logger *slog.Logger
}

func (e *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrServiceDisabled) {
		writeMessage(w, http.StatusServiceUnavailable, false, "This feature is not configured on the server")
		return
	}

	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindUnexpected, Message: "Server error", Err: err}
	}

	status := statusFor(err, se.Kind)
	if status >= http.StatusInternalServerError {
		e.Logger.ErrorContext(r.Context(), se.Message, "path", r.URL.Path, "error", se.Err)
		resp := Response{Success: false, Message: se.Message}
		if e.Expose && se.Err != nil {
			resp.Error = se.Err.Error()
		}
		writeJSON(w, status, resp)
		return
	}
	writeMessage(w, status, false, se.Message)
}

func statusFor(err error, kind services.ErrorKind) int {
	switch {
	case errors.Is(err, services.ErrNotFollowing):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrActingForOtherUser):
		return http.StatusForbidden
	}
	switch kind {
	case services.KindValidation, services.KindDuplicate:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
