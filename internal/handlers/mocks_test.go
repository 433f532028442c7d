package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrors(expose bool) *ErrorWriter {
	return &ErrorWriter{Expose: expose, Logger: discardLogger()}
}

type mockAuth struct {
	RegisterFn       func(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	LoginFn          func(ctx context.Context, email, password string) (*services.AuthResult, error)
	CurrentUserFn    func(ctx context.Context, uid string) (*models.AccountView, error)
	ForgotPasswordFn func(ctx context.Context, email string) (string, error)
	ResetPasswordFn  func(ctx context.Context, token, password string) (*services.AuthResult, error)
}

func (m *mockAuth) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	return m.RegisterFn(ctx, in)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return m.LoginFn(ctx, email, password)
}

func (m *mockAuth) CurrentUser(ctx context.Context, uid string) (*models.AccountView, error) {
	return m.CurrentUserFn(ctx, uid)
}

func (m *mockAuth) Logout() string { return services.LogoutMessage }

func (m *mockAuth) ForgotPassword(ctx context.Context, email string) (string, error) {
	return m.ForgotPasswordFn(ctx, email)
}

func (m *mockAuth) ResetPassword(ctx context.Context, token, password string) (*services.AuthResult, error) {
	return m.ResetPasswordFn(ctx, token, password)
}

type mockSocial struct {
	GetProfileFn    func(ctx context.Context, uid string) (*models.Profile, error)
	GetFollowersFn  func(ctx context.Context, uid string) ([]models.PublicUser, error)
	GetFollowingFn  func(ctx context.Context, uid string) ([]models.PublicUser, error)
	FollowFn        func(ctx context.Context, actorID string, req services.FollowRequest) error
	UnfollowFn      func(ctx context.Context, actorID string, req services.FollowRequest) error
	IsFollowingFn   func(ctx context.Context, followerID, followingID string) (bool, error)
	UpdateProfileFn func(ctx context.Context, uid string, upd services.ProfileUpdate) (*models.AccountView, error)
}

func (m *mockSocial) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	return m.GetProfileFn(ctx, uid)
}

func (m *mockSocial) GetFollowers(ctx context.Context, uid string) ([]models.PublicUser, error) {
	return m.GetFollowersFn(ctx, uid)
}

func (m *mockSocial) GetFollowing(ctx context.Context, uid string) ([]models.PublicUser, error) {
	return m.GetFollowingFn(ctx, uid)
}

func (m *mockSocial) Follow(ctx context.Context, actorID string, req services.FollowRequest) error {
	return m.FollowFn(ctx, actorID, req)
}

func (m *mockSocial) Unfollow(ctx context.Context, actorID string, req services.FollowRequest) error {
	return m.UnfollowFn(ctx, actorID, req)
}

func (m *mockSocial) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return m.IsFollowingFn(ctx, followerID, followingID)
}

func (m *mockSocial) UpdateProfile(ctx context.Context, uid string, upd services.ProfileUpdate) (*models.AccountView, error) {
	return m.UpdateProfileFn(ctx, uid, upd)
}

type mockUploader struct {
	UploadFn func(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error)
}

func (m *mockUploader) UploadFileFromHeader(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	return m.UploadFn(ctx, fh, folder)
}

type mockAssistant struct {
	ChatFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockAssistant) Chat(ctx context.Context, prompt string) (string, error) {
	return m.ChatFn(ctx, prompt)
}

type mockVideos struct {
	PublishFn    func(ctx context.Context, uid, title, videoURL string) (*models.Video, error)
	ListByUserFn func(ctx context.Context, uid string) ([]models.Video, error)
}

func (m *mockVideos) Publish(ctx context.Context, uid, title, videoURL string) (*models.Video, error) {
	return m.PublishFn(ctx, uid, title, videoURL)
}

func (m *mockVideos) ListByUser(ctx context.Context, uid string) ([]models.Video, error) {
	return m.ListByUserFn(ctx, uid)
}
