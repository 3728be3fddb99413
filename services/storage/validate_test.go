package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"fixerhub/apperrors"
)

func formFile(t *testing.T, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "upload.bin")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(MaxUploadBytes); err != nil {
		t.Fatal(err)
	}
	f, h, err := req.FormFile("file")
	if err != nil {
		t.Fatal(err)
	}
	return f, h
}

func TestCheckUploadAcceptsPDF(t *testing.T) {
	f, h := formFile(t, []byte("%PDF-1.4\n1 0 obj\n"))
	if err := CheckUpload(f, h, DocumentTypes); err != nil {
		t.Fatalf("CheckUpload: %v", err)
	}
}

func TestCheckUploadRejectsText(t *testing.T) {
	f, h := formFile(t, []byte("just some plain text"))
	err := CheckUpload(f, h, ImageTypes)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
