package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
)

// LegacyUser is an identity read from the previous identity provider.
type LegacyUser struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
}

// LegacyUserSource lists every identity to migrate.
type LegacyUserSource interface {
	ListUsers(ctx context.Context) ([]LegacyUser, error)
}

// LegacyVideo is a video post read from the legacy videos collection.
type LegacyVideo struct {
	ID        string
	UserID    string
	VideoURL  string
	Title     string
	CreatedAt time.Time
}

// LegacyVideoSource lists every video post to migrate.
type LegacyVideoSource interface {
	ListVideos(ctx context.Context) ([]LegacyVideo, error)
}

type MigrationReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Migrator copies legacy identities into the users collection. It is safe to
// run repeatedly: accounts whose email or uid already exist are skipped.
type Migrator struct {
	source      LegacyUserSource
	credentials *CredentialStore
	users       UserRepository
	logger      *slog.Logger
	DryRun      bool
}

func NewMigrator(source LegacyUserSource, credentials *CredentialStore, users UserRepository, logger *slog.Logger) *Migrator {
	return &Migrator{source: source, credentials: credentials, users: users, logger: logger}
}

func (m *Migrator) Run(ctx context.Context) (MigrationReport, error) {
	var report MigrationReport

	legacy, err := m.source.ListUsers(ctx)
	if err != nil {
		return report, err
	}
	m.logger.Info("legacy users loaded", "count", len(legacy))

	for _, lu := range legacy {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		email := strings.TrimSpace(lu.Email)
		if email == "" {
			m.logger.Warn("skipping legacy user without email", "uid", lu.UID)
			report.Skipped++
			continue
		}

		exists, err := m.exists(ctx, lu.UID, email)
		if err != nil {
			m.logger.Error("lookup failed", "uid", lu.UID, "error", err)
			report.Failed++
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		if m.DryRun {
			report.Imported++
			continue
		}

		user := &models.User{
			UID:         lu.UID,
			Email:       email,
			DisplayName: strings.TrimSpace(lu.DisplayName),
			PhotoURL:    lu.PhotoURL,
			CreatedAt:   lu.CreatedAt.UTC(),
		}
		if err := m.credentials.Import(ctx, user); err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				report.Skipped++
				continue
			}
			m.logger.Error("import failed", "uid", lu.UID, "error", err)
			report.Failed++
			continue
		}
		report.Imported++
	}

	m.logger.Info("migration finished", "imported", report.Imported, "skipped", report.Skipped, "failed", report.Failed, "dry_run", m.DryRun)
	return report, nil
}

// RunVideos copies legacy video posts into videos. Run it after Run so the
// authors exist. The legacy document ID becomes the video_id, which makes
// reruns skip what was already copied.
func (m *Migrator) RunVideos(ctx context.Context, source LegacyVideoSource, videos VideoRepository) (MigrationReport, error) {
	var report MigrationReport

	legacy, err := source.ListVideos(ctx)
	if err != nil {
		return report, err
	}
	m.logger.Info("legacy videos loaded", "count", len(legacy))

	for _, lv := range legacy {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if lv.ID == "" || lv.UserID == "" || strings.TrimSpace(lv.VideoURL) == "" {
			m.logger.Warn("skipping incomplete legacy video", "id", lv.ID, "uid", lv.UserID)
			report.Skipped++
			continue
		}
		if _, err := m.users.FindByUID(ctx, lv.UserID); err != nil {
			if errors.Is(err, ErrDocumentNotFound) {
				m.logger.Warn("skipping video of unknown user", "id", lv.ID, "uid", lv.UserID)
				report.Skipped++
			} else {
				m.logger.Error("lookup failed", "uid", lv.UserID, "error", err)
				report.Failed++
			}
			continue
		}

		if m.DryRun {
			report.Imported++
			continue
		}

		title := strings.TrimSpace(lv.Title)
		if title == "" {
			title = "Untitled"
		}
		video := &models.Video{
			VideoID:   lv.ID,
			UserID:    lv.UserID,
			VideoURL:  lv.VideoURL,
			Title:     title,
			CreatedAt: lv.CreatedAt.UTC(),
		}
		if err := videos.Insert(ctx, video); err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				report.Skipped++
				continue
			}
			m.logger.Error("video import failed", "id", lv.ID, "error", err)
			report.Failed++
			continue
		}
		report.Imported++
	}

	m.logger.Info("video migration finished", "imported", report.Imported, "skipped", report.Skipped, "failed", report.Failed, "dry_run", m.DryRun)
	return report, nil
}

func (m *Migrator) exists(ctx context.Context, uid, email string) (bool, error) {
	if _, err := m.users.FindByEmail(ctx, email, false); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrDocumentNotFound) {
		return false, err
	}
	if uid == "" {
		return false, nil
	}
	if _, err := m.users.FindByUID(ctx, uid); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrDocumentNotFound) {
		return false, err
	}
	return false, nil
}
