package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideosCollection is the MongoDB collection holding video posts.
const VideosCollection = "videos"

// MongoVideoStore persists video posts in MongoDB.
type MongoVideoStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewMongoVideoStore(coll *mongo.Collection, logger *slog.Logger) *MongoVideoStore {
	return &MongoVideoStore{coll: coll, logger: logger}
}

func (s *MongoVideoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "video_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("video_id_unique")},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("user_created")},
	})
	return err
}

// Insert stores a video. A reused video_id returns ErrDuplicateKey.
func (s *MongoVideoStore) Insert(ctx context.Context, video *models.Video) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if _, err := s.coll.InsertOne(ctx, video); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	s.logger.Debug("video inserted", "video_id", video.VideoID, "uid", video.UserID)
	return nil
}

// ListByUser returns the user's videos, newest first.
func (s *MongoVideoStore) ListByUser(ctx context.Context, uid string) ([]models.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	videos := []models.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}
