package routes

import (
	"log/slog"
	"net/http"

	"github.com/foodieshare/foodieshare-backend/internal/handlers"
	"github.com/foodieshare/foodieshare-backend/internal/logging"
	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Uploads       *handlers.UploadHandler
	Videos        *handlers.VideoHandler
	Assistant     *handlers.AssistantHandler
	Notifications *handlers.NotificationHandler
}

// Options controls the middleware stack built by NewRouter.
type Options struct {
	AllowedOrigins []string
	AllowedHost    string
	Production     bool
	// RateLimiter is the Redis limiter used outside production. May be nil.
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// NewRouter builds the chi router with the common middleware and every route.
func NewRouter(opts Options, h Handlers, verifier middleware.TokenVerifier) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(logging.RequestLogger(opts.Logger))
	r.Use(middleware.Recover(opts.Logger))

	// CORS first so preflight never reaches the limiters.
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if opts.Production {
		for _, mw := range middleware.ProductionSecurity(opts.AllowedHost) {
			r.Use(mw)
		}
	} else {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Route not found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"success":false,"message":"Method not allowed"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("FoodieShare API is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	SetupRoutes(r, h, verifier)
	return r
}

func SetupRoutes(r chi.Router, h Handlers, verifier middleware.TokenVerifier) {
	requireAuth := middleware.RequireAuth(verifier)

	// Auth routes
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.With(requireAuth).Get("/me", h.Auth.Me)
		r.Get("/logout", h.Auth.Logout)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password/{resetToken}", h.Auth.ResetPassword)
	})

	// Social graph and profile routes
	r.Route("/api/user", func(r chi.Router) {
		r.With(requireAuth).Post("/follow", h.Users.Follow)
		r.With(requireAuth).Post("/unfollow", h.Users.Unfollow)
		r.With(requireAuth).Put("/profile", h.Users.UpdateProfile)
		r.With(requireAuth).Post("/profile/photo", h.Uploads.UploadProfilePhoto)

		r.Get("/{userId}", h.Users.GetProfile)
		r.Get("/{userId}/followers", h.Users.GetFollowers)
		r.Get("/{userId}/following", h.Users.GetFollowing)
		r.Get("/{userId}/following/{targetId}", h.Users.IsFollowing)
		r.Get("/{userId}/videos", h.Videos.List)
	})

	// File upload routes
	r.With(requireAuth).Post("/api/upload", h.Uploads.UploadFile)
	r.With(requireAuth).Post("/api/videos", h.Videos.Publish)

	// Cooking assistant (Gemini)
	r.With(requireAuth, middleware.AssistantRateLimit()).Post("/api/assistant/chat", h.Assistant.Chat)

	// WebSocket notifications; browsers pass the token as ?token=
	r.With(middleware.RequireAuthAllowQuery(verifier)).Get("/ws/notifications", h.Notifications.Stream)
}
