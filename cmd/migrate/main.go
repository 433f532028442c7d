// Command migrate imports accounts from the legacy Firebase project into the
// MongoDB users collection, then copies the Firestore videos collection.
// Imported users keep their Firebase UID and must use forgot-password to
// choose a new password.
//
//	-dry-run   count what would be imported without writing
//	-project   Firebase project id (FIREBASE_PROJECT_ID)
//	-videos    also import video posts (default true)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/foodieshare/foodieshare-backend/internal/config"
	"github.com/foodieshare/foodieshare-backend/internal/database"
	"github.com/foodieshare/foodieshare-backend/internal/logging"
	"github.com/foodieshare/foodieshare-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "report what would be imported without writing")
	withVideos := fs.Bool("videos", true, "also import the videos collection")
	fs.StringVar(&cfg.FirebaseProjectID, "project", cfg.FirebaseProjectID, "Firebase project id")
	_ = fs.Parse(os.Args[1:])

	logger := logging.New(cfg.Environment, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	source, err := services.NewFirebaseUserSource(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
	if err != nil {
		logger.Error("failed to initialize Firebase", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer database.Disconnect(client)

	users := services.NewMongoUserStore(db.Collection(services.UsersCollection), logger)
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to ensure user indexes", "error", err)
		os.Exit(1)
	}

	migrator := services.NewMigrator(source, services.NewCredentialStore(users), users, logger)
	migrator.DryRun = *dryRun

	report, err := migrator.Run(ctx)
	if err != nil {
		logger.Error("migration aborted", "error", err, "imported", report.Imported)
		os.Exit(1)
	}
	summary := map[string]services.MigrationReport{"users": report}

	if *withVideos {
		videos := services.NewMongoVideoStore(db.Collection(services.VideosCollection), logger)
		if err := videos.EnsureIndexes(ctx); err != nil {
			logger.Error("failed to ensure video indexes", "error", err)
			os.Exit(1)
		}
		videoReport, err := migrator.RunVideos(ctx, source, videos)
		if err != nil {
			logger.Error("video migration aborted", "error", err, "imported", videoReport.Imported)
			os.Exit(1)
		}
		summary["videos"] = videoReport
	}
	json.NewEncoder(os.Stdout).Encode(summary)
}
