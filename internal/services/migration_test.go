package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	users []LegacyUser
	err   error
}

func (s staticSource) ListUsers(context.Context) ([]LegacyUser, error) {
	return s.users, s.err
}

func TestMigrator_Run(t *testing.T) {
	repo := newMemUserRepo()
	repo.add(&models.User{UID: "existing", Email: "taken@x.com", DisplayName: "taken"})

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := staticSource{users: []LegacyUser{
		{UID: "fb-1", Email: "chef@x.com", DisplayName: "Chef", PhotoURL: "https://img/chef.png", CreatedAt: created},
		{UID: "fb-2", Email: "baker@x.com"},
		{UID: "fb-3", Email: "taken@x.com"},
		{UID: "existing", Email: "other@x.com"},
		{UID: "fb-4", Email: ""},
	}}

	creds := NewCredentialStore(repo)
	m := NewMigrator(source, creds, repo, discardLogger())

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Imported: 2, Skipped: 3, Failed: 0}, report)

	chef, err := repo.FindByEmail(context.Background(), "chef@x.com", true)
	require.NoError(t, err)
	assert.Equal(t, "fb-1", chef.UID)
	assert.Equal(t, "Chef", chef.DisplayName)
	assert.Equal(t, "https://img/chef.png", chef.PhotoURL)
	assert.Equal(t, created, chef.CreatedAt)
	assert.NotEmpty(t, chef.Password)
	assert.False(t, creds.VerifyPassword(chef, ""), "imported accounts have an unknown password")

	baker, err := repo.FindByEmail(context.Background(), "baker@x.com", false)
	require.NoError(t, err)
	assert.Equal(t, "baker", baker.DisplayName)

	again, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Skipped: 5}, again, "a second run imports nothing")
}

func TestMigrator_DryRun(t *testing.T) {
	repo := newMemUserRepo()
	m := NewMigrator(staticSource{users: []LegacyUser{{UID: "fb-1", Email: "chef@x.com"}}}, NewCredentialStore(repo), repo, discardLogger())
	m.DryRun = true

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Zero(t, repo.inserts)
}

func TestMigrator_SourceError(t *testing.T) {
	repo := newMemUserRepo()
	m := NewMigrator(staticSource{err: errors.New("firebase unavailable")}, NewCredentialStore(repo), repo, discardLogger())

	_, err := m.Run(context.Background())
	assert.EqualError(t, err, "firebase unavailable")
}

func TestMigrator_LookupFailureCountsAsFailed(t *testing.T) {
	repo := newMemUserRepo()
	repo.failWith = errors.New("mongo down")
	m := NewMigrator(staticSource{users: []LegacyUser{{UID: "fb-1", Email: "chef@x.com"}}}, NewCredentialStore(repo), repo, discardLogger())

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Failed: 1}, report)
}

type staticVideoSource struct {
	videos []LegacyVideo
	err    error
}

func (s staticVideoSource) ListVideos(context.Context) ([]LegacyVideo, error) {
	return s.videos, s.err
}

func TestMigrator_RunVideos(t *testing.T) {
	repo := newMemUserRepo()
	repo.add(&models.User{UID: "fb-1", Email: "chef@x.com"})
	videos := newMemVideoRepo()

	created := time.Date(2024, 4, 2, 18, 30, 0, 0, time.UTC)
	source := staticVideoSource{videos: []LegacyVideo{
		{ID: "doc-1", UserID: "fb-1", VideoURL: "https://res.cloudinary.com/demo/video/a.mp4", Title: " Ramen ", CreatedAt: created},
		{ID: "doc-2", UserID: "fb-1", VideoURL: "https://res.cloudinary.com/demo/video/b.mp4"},
		{ID: "doc-3", UserID: "ghost", VideoURL: "https://res.cloudinary.com/demo/video/c.mp4", Title: "Lost"},
		{ID: "doc-4", UserID: "fb-1", VideoURL: "", Title: "No file"},
		{ID: "doc-5", UserID: "", VideoURL: "https://res.cloudinary.com/demo/video/e.mp4"},
	}}

	m := NewMigrator(staticSource{}, NewCredentialStore(repo), repo, discardLogger())
	report, err := m.RunVideos(context.Background(), source, videos)
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Imported: 2, Skipped: 3}, report)

	ramen := videos.byID["doc-1"]
	assert.Equal(t, "fb-1", ramen.UserID)
	assert.Equal(t, "Ramen", ramen.Title)
	assert.Equal(t, created, ramen.CreatedAt)
	assert.Equal(t, "Untitled", videos.byID["doc-2"].Title)

	again, err := m.RunVideos(context.Background(), source, videos)
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Skipped: 5}, again, "a second run imports nothing")
}

func TestMigrator_RunVideosDryRun(t *testing.T) {
	repo := newMemUserRepo()
	repo.add(&models.User{UID: "fb-1", Email: "chef@x.com"})
	videos := newMemVideoRepo()

	m := NewMigrator(staticSource{}, NewCredentialStore(repo), repo, discardLogger())
	m.DryRun = true
	report, err := m.RunVideos(context.Background(), staticVideoSource{videos: []LegacyVideo{
		{ID: "doc-1", UserID: "fb-1", VideoURL: "https://v/a.mp4", Title: "Ramen"},
	}}, videos)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Empty(t, videos.byID)
}

func TestMigrator_RunVideosFailures(t *testing.T) {
	repo := newMemUserRepo()
	repo.add(&models.User{UID: "fb-1", Email: "chef@x.com"})
	videos := newMemVideoRepo()
	videos.failWith = errors.New("mongo down")
	m := NewMigrator(staticSource{}, NewCredentialStore(repo), repo, discardLogger())

	report, err := m.RunVideos(context.Background(), staticVideoSource{videos: []LegacyVideo{
		{ID: "doc-1", UserID: "fb-1", VideoURL: "https://v/a.mp4", Title: "Ramen"},
	}}, videos)
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Failed: 1}, report)

	_, err = m.RunVideos(context.Background(), staticVideoSource{err: errors.New("firestore unavailable")}, videos)
	assert.EqualError(t, err, "firestore unavailable")
}
