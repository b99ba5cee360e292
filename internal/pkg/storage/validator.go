package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// ImageMimeTypes are accepted for vendor logos and gallery media.
var ImageMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// MaxImageSize bounds a single uploaded image.
const MaxImageSize int64 = 10 * 1024 * 1024

// ReadValidated reads at most maxSize bytes and sniffs the content type
// from magic bytes. The declared client content type is ignored.
func ReadValidated(reader io.Reader, maxSize int64, allowed []string) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, "", ErrFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	for _, t := range allowed {
		if t == mimeType {
			return data, mimeType, nil
		}
	}
	return nil, "", ErrInvalidMimeType
}

// ExtensionForMime returns the file extension for an image MIME type.
func ExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
