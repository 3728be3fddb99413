package storage

import (
	"context"
	"io"
)

// Folders used for uploaded files.
const (
	FolderCertifications  = "fixerhub/certifications"
	FolderProfilePictures = "fixerhub/profile-pictures"
	FolderEvidence        = "fixerhub/dispute-evidence"
)

// StoredFile identifies an uploaded file.
type StoredFile struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// StorageService defines the interface for storage operations.
type StorageService interface {
	Upload(ctx context.Context, file io.Reader, folder string) (StoredFile, error)
	Delete(ctx context.Context, publicID string) error
}
