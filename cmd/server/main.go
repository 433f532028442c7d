package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/foodieshare/foodieshare-backend/internal/config"
	"github.com/foodieshare/foodieshare-backend/internal/database"
	"github.com/foodieshare/foodieshare-backend/internal/handlers"
	"github.com/foodieshare/foodieshare-backend/internal/logging"
	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/foodieshare/foodieshare-backend/internal/routes"
	"github.com/foodieshare/foodieshare-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB (accounts)
	mongoClient, mongoDB, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		logger.Error("failed to connect to MongoDB; check the URI, credentials and IP allow-list")
		return err
	}
	defer database.Disconnect(mongoClient)

	// Connect to PostgreSQL (follow graph)
	pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI, logger)
	if err != nil {
		return err
	}
	defer database.DisconnectPostgres(pg)

	// Connect to Redis (cache, rate limit, notification fan-out)
	rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, logger)
	if err != nil {
		return err
	}
	defer database.DisconnectRedis(rdb)

	users := services.NewMongoUserStore(mongoDB.Collection(services.UsersCollection), logger)
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure MongoDB user indexes", "error", err)
	}

	videoStore := services.NewMongoVideoStore(mongoDB.Collection(services.VideosCollection), logger)
	if err := videoStore.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure MongoDB video indexes", "error", err)
	}

	// Reset links are only written to the log, so never in production.
	var notifier services.ResetNotifier
	if !cfg.IsProduction() {
		notifier = services.NewLogResetNotifier(logger)
	}

	hub := services.NewNotificationHub(rdb, logger)
	go hub.Run(ctx)

	credentials := services.NewCredentialStore(users)
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire)
	auth := services.NewAuthService(credentials, users, tokens, notifier, cfg.PasswordResetURL, logger)
	cache := services.NewCacheService(rdb, services.DefaultCacheTTL, logger)
	social := services.NewFollowService(users, services.NewPostgresFollowStore(pg), cache, hub, logger)

	var uploader handlers.Uploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("failed to initialize Cloudinary; uploads disabled", "error", err)
		} else {
			uploader = cld
			logger.Info("Cloudinary service initialized")
		}
	} else {
		logger.Warn("Cloudinary credentials not found; uploads disabled")
	}

	var generator services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gen, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("failed to initialize Gemini; assistant disabled", "error", err)
		} else {
			generator = gen
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set; assistant disabled")
	}

	errs := &handlers.ErrorWriter{Expose: !cfg.IsProduction(), Logger: logger}
	router := routes.NewRouter(routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHost:    cfg.AllowedHost,
		Production:     cfg.IsProduction(),
		RateLimiter:    middleware.NewRateLimiter(rdb, logger),
		Logger:         logger,
	}, routes.Handlers{
		Auth:          handlers.NewAuthHandler(auth, errs),
		Users:         handlers.NewUserHandler(social, errs),
		Uploads:       handlers.NewUploadHandler(uploader, social, errs),
		Videos:        handlers.NewVideoHandler(uploader, services.NewVideoService(videoStore, users, logger), errs),
		Assistant:     handlers.NewAssistantHandler(services.NewCookingAssistant(generator, logger), errs),
		Notifications: handlers.NewNotificationHandler(hub, cfg.AllowedOrigins, logger),
	}, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("FoodieShare backend running", "port", cfg.Port, "env", cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
