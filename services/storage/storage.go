package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// Upload stores file in folder and returns its secure URL and public ID.
func (s *CloudinaryStorage) Upload(ctx context.Context, file io.Reader, folder string) (StoredFile, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "auto",
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("storage: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return StoredFile{}, fmt.Errorf("storage: upload rejected: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return StoredFile{}, fmt.Errorf("storage: no public ID returned")
	}
	return StoredFile{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// Delete removes a file given its public ID.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("storage: failed to delete file: %w", err)
	}
	return nil
}
