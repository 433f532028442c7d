package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	DefaultUploadFolder = "foodieshare"
	RecipeImageFolder   = "foodieshare/recipes"
	ProfilePhotoFolder  = "foodieshare/profile-pictures"
	VideoFolder         = "foodieshare/videos"
)

// uploadFolders are the folders a client may name on the generic upload route.
// Profile photos and videos only go through their own routes.
var uploadFolders = map[string]string{
	"":        DefaultUploadFolder,
	"general": DefaultUploadFolder,
	"recipes": RecipeImageFolder,
}

// UploadFolder resolves a client-supplied folder name.
func UploadFolder(name string) (string, bool) {
	folder, ok := uploadFolders[strings.ToLower(strings.TrimSpace(name))]
	return folder, ok
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryService{
		cld: cld,
	}, nil
}

// UploadFile streams file to Cloudinary and returns its secure URL.
func (s *CloudinaryService) UploadFile(ctx context.Context, file io.Reader, folder string) (string, error) {
	if folder == "" {
		folder = DefaultUploadFolder
	}

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto", // image, video or raw
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", uploadResult.Error.Message)
	}

	return uploadResult.SecureURL, nil
}

func (s *CloudinaryService) UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return s.UploadFile(ctx, file, folder)
}
