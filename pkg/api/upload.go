package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
)

// MaxUploadSize is the largest file the upload endpoint accepts.
const MaxUploadSize = 5 * 1024 * 1024

// AllowedImageTypes lists the MIME types accepted for avatars and attachments.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// UploadError describes a file rejected before it was sent.
type UploadError struct {
	Path   string
	Reason string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("cannot upload %s: %s", filepath.Base(e.Path), e.Reason)
}

// DetectImageType sniffs the file content and returns its MIME type if it
// is an allowed image.
func DetectImageType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	for _, allowed := range AllowedImageTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", &UploadError{Path: path, Reason: fmt.Sprintf("unsupported file type %s", mtype.String())}
}

// UploadFile sends a file as multipart field "file" and returns the storage
// path the backend assigned to it.
func UploadFile(ctx context.Context, path string) (string, error) {
	logger.Debug("Uploading file", "file_path", path)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", &UploadError{Path: path, Reason: "is a directory"}
	}
	if info.Size() > MaxUploadSize {
		return "", &UploadError{
			Path:   path,
			Reason: fmt.Sprintf("file is %.1f MB (max %d MB)", float64(info.Size())/(1024*1024), MaxUploadSize/(1024*1024)),
		}
	}

	contentType, err := DetectImageType(path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var response UploadResponse
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetMultipartField("file", filepath.Base(path), contentType, file).
		Post("/upload")

	if err := decode(resp, err, &response); err != nil {
		return "", err
	}
	if response.Path == "" {
		return "", fmt.Errorf("upload succeeded but no path was returned")
	}

	logger.Debug("File uploaded", "path", response.Path, "size", info.Size())
	return response.Path, nil
}
