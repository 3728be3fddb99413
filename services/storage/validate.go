package storage

import (
	"mime/multipart"
	"net/http"
	"strings"

	"fixerhub/apperrors"
)

const MaxUploadBytes = 5 << 20

var (
	ImageTypes    = []string{"image/jpeg", "image/png", "image/webp"}
	DocumentTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
)

// CheckUpload rejects files that are too large or whose sniffed content type is not allowed.
// The file's read offset is restored.
func CheckUpload(file multipart.File, header *multipart.FileHeader, allowed []string) error {
	if header.Size > MaxUploadBytes {
		return apperrors.Validation("file exceeds %d MB", MaxUploadBytes>>20)
	}
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return apperrors.Validation("file is empty")
	}
	if _, err := file.Seek(0, 0); err != nil {
		return apperrors.Internal("could not rewind upload", err)
	}
	contentType := http.DetectContentType(head[:n])
	for _, t := range allowed {
		if strings.HasPrefix(contentType, t) {
			return nil
		}
	}
	return apperrors.Validation("file type %s is not allowed", contentType)
}
