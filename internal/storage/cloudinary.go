package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader stores images in a Cloudinary media library.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader connects using explicit credentials.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	if strings.TrimSpace(cloudName) == "" {
		return nil, errors.New("storage: cloudinary cloud name is required")
	}

	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: cloudinary client: %w", err)
	}

	folder = strings.TrimSpace(folder)
	if folder == "" {
		folder = "products"
	}

	return &CloudinaryUploader{client: client, folder: folder}, nil
}

// Upload pushes the image and returns its HTTPS delivery URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	publicID := strings.TrimSuffix(filename, ".jpg")
	result, err := u.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("storage: cloudinary upload: %w", err)
	}
	return result.SecureURL, nil
}
