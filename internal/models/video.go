package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a recipe video post stored in the videos collection.
type Video struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	VideoID   string             `bson:"video_id" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	VideoURL  string             `bson:"video_url" json:"videoUrl"`
	Title     string             `bson:"title" json:"title"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
