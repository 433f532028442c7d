package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/google/uuid"
)

const maxVideoTitleLength = 120

var (
	ErrMissingVideoTitle = &Error{Kind: KindValidation, Message: "Please select a file and enter a title!"}
	ErrVideoTitleTooLong = &Error{Kind: KindValidation, Message: "Title must be at most 120 characters"}
)

// VideoRepository is satisfied by *MongoVideoStore.
type VideoRepository interface {
	Insert(ctx context.Context, video *models.Video) error
	ListByUser(ctx context.Context, uid string) ([]models.Video, error)
}

// VideoService records uploaded recipe videos against their author.
type VideoService struct {
	videos VideoRepository
	users  UserRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewVideoService(videos VideoRepository, users UserRepository, logger *slog.Logger) *VideoService {
	return &VideoService{videos: videos, users: users, logger: logger, now: time.Now}
}

// NormalizeVideoTitle trims title and checks it is present and short enough.
func NormalizeVideoTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrMissingVideoTitle
	}
	if utf8.RuneCountInString(title) > maxVideoTitleLength {
		return "", ErrVideoTitleTooLong
	}
	return title, nil
}

// Publish stores a video already uploaded to videoURL under uid.
func (s *VideoService) Publish(ctx context.Context, uid, title, videoURL string) (*models.Video, error) {
	title, err := NormalizeVideoTitle(title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(videoURL) == "" {
		return nil, validationError("No file provided")
	}
	if err := s.ensureUser(ctx, uid); err != nil {
		return nil, err
	}

	video := &models.Video{
		VideoID:   uuid.NewString(),
		UserID:    uid,
		VideoURL:  videoURL,
		Title:     title,
		CreatedAt: s.now().UTC(),
	}
	if err := s.videos.Insert(ctx, video); err != nil {
		return nil, unexpected("Failed to save video", err)
	}
	s.logger.Info("video published", "uid", uid, "video_id", video.VideoID)
	return video, nil
}

// ListByUser returns uid's videos, newest first.
func (s *VideoService) ListByUser(ctx context.Context, uid string) ([]models.Video, error) {
	if err := s.ensureUser(ctx, uid); err != nil {
		return nil, err
	}
	videos, err := s.videos.ListByUser(ctx, uid)
	if err != nil {
		return nil, unexpected("Server error", err)
	}
	return videos, nil
}

func (s *VideoService) ensureUser(ctx context.Context, uid string) error {
	if _, err := s.users.FindByUID(ctx, uid); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return ErrProfileNotFound
		}
		return unexpected("Server error", err)
	}
	return nil
}
