package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	legacyUsersCollection  = "users"
	legacyVideosCollection = "videos"
)

// FirebaseUserSource reads accounts from Firebase Auth and overlays the
// profilePicture stored in the Firestore users collection.
type FirebaseUserSource struct {
	auth      *auth.Client
	firestore *firestore.Client
}

var (
	_ LegacyUserSource  = (*FirebaseUserSource)(nil)
	_ LegacyVideoSource = (*FirebaseUserSource)(nil)
)

// NewFirebaseUserSource initializes Firebase from base64-encoded service account JSON.
func NewFirebaseUserSource(ctx context.Context, projectID, encodedCredentials string) (*FirebaseUserSource, error) {
	if encodedCredentials == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS_BASE64 environment variable is missing")
	}
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID environment variable is missing")
	}

	decoded, err := base64.StdEncoding.DecodeString(encodedCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firebase credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase Auth client: %w", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirebaseUserSource{auth: authClient, firestore: fsClient}, nil
}

func (s *FirebaseUserSource) Close() error {
	return s.firestore.Close()
}

func (s *FirebaseUserSource) ListUsers(ctx context.Context) ([]LegacyUser, error) {
	photos, err := s.profilePictures(ctx)
	if err != nil {
		return nil, err
	}

	var users []LegacyUser
	it := s.auth.Users(ctx, "")
	for {
		rec, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing Firebase users: %w", err)
		}

		lu := LegacyUser{
			UID:         rec.UID,
			Email:       rec.Email,
			DisplayName: rec.DisplayName,
			PhotoURL:    rec.PhotoURL,
		}
		if rec.UserMetadata != nil && rec.UserMetadata.CreationTimestamp > 0 {
			lu.CreatedAt = time.UnixMilli(rec.UserMetadata.CreationTimestamp)
		}
		if photo, ok := photos[rec.UID]; ok {
			lu.PhotoURL = photo
		}
		users = append(users, lu)
	}
	return users, nil
}

// profilePictures maps Firestore user document IDs to their profilePicture.
func (s *FirebaseUserSource) profilePictures(ctx context.Context) (map[string]string, error) {
	photos := make(map[string]string)
	iter := s.firestore.Collection(legacyUsersCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading Firestore users: %w", err)
		}
		if url, ok := doc.Data()["profilePicture"].(string); ok && url != "" {
			photos[doc.Ref.ID] = url
		}
	}
	return photos, nil
}

// ListVideos reads the Firestore videos collection. createdAt is a server
// timestamp and may be missing on documents written while offline.
func (s *FirebaseUserSource) ListVideos(ctx context.Context) ([]LegacyVideo, error) {
	iter := s.firestore.Collection(legacyVideosCollection).Documents(ctx)
	defer iter.Stop()

	var videos []LegacyVideo
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading Firestore videos: %w", err)
		}

		data := doc.Data()
		lv := LegacyVideo{ID: doc.Ref.ID}
		lv.UserID, _ = data["userId"].(string)
		lv.VideoURL, _ = data["videoUrl"].(string)
		lv.Title, _ = data["title"].(string)
		if created, ok := data["createdAt"].(time.Time); ok {
			lv.CreatedAt = created
		} else {
			lv.CreatedAt = doc.CreateTime
		}
		videos = append(videos, lv)
	}
	return videos, nil
}
