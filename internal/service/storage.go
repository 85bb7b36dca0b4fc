// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	_ "golang.org/x/image/webp" // WebP decoder
)

// URLPrefix is the public path prefix under which stored images are served.
const URLPrefix = "/uploads/"

// allowedImageTypes are the MIME types accepted for submission artwork.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// StoredImage describes a saved submission image.
type StoredImage struct {
	URL    string
	Width  int
	Height int
	Size   int64
}

// ImageStore saves submission artwork to a local uploads directory.
// Each file lives under its own UUID directory so sanitized filenames
// never collide.
type ImageStore struct {
	dir     string
	maxSize int64
}

// NewImageStore creates an image store rooted at dir with the given
// per-file size cap in bytes.
func NewImageStore(dir string, maxSize int64) *ImageStore {
	return &ImageStore{dir: dir, maxSize: maxSize}
}

// Dir returns the root directory files are stored under.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save validates and persists an uploaded image. It enforces the size cap
// and MIME allow-list, decodes the image to confirm it really is one, and
// records its pixel dimensions. On any failure after the file hits disk
// the partial write is removed.
func (s *ImageStore) Save(file multipart.File, header *multipart.FileHeader) (*StoredImage, error) {
	if header.Size > s.maxSize {
		return nil, ValidationError("Please upload an image less than %d bytes", s.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, InternalError("Problem with file upload", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ValidationError("Please upload an image less than %d bytes", s.maxSize)
	}

	// Clients routinely send application/octet-stream, so trust the bytes
	// over the declared Content-Type.
	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !allowedImageTypes[mimeType] {
		return nil, ValidationError("Please upload an image file (JPEG, PNG, GIF or WebP)")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ValidationError("Please upload an image file (JPEG, PNG, GIF or WebP)")
	}
	bounds := img.Bounds()

	fileUUID := uuid.New().String()
	filename := sanitizeFilename(header.Filename)

	dir := filepath.Join(s.dir, fileUUID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, InternalError("Problem with file upload", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, InternalError("Problem with file upload", err)
	}

	return &StoredImage{
		URL:    URLPrefix + fileUUID + "/" + filename,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Size:   int64(len(data)),
	}, nil
}

// Delete removes a previously stored image and its UUID directory.
// URLs that do not point into the store (external placeholders) are
// left alone.
func (s *ImageStore) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return nil
	}
	// The stored layout is exactly <uuid>/<filename>; reject anything else
	// so a crafted URL cannot escape the uploads directory.
	parts := strings.Split(rel, "/")
	if len(parts) != 2 {
		return fmt.Errorf("unexpected upload path: %s", url)
	}
	if _, err := uuid.Parse(parts[0]); err != nil {
		return fmt.Errorf("unexpected upload path: %s", url)
	}
	return os.RemoveAll(filepath.Join(s.dir, parts[0]))
}

// IsStored reports whether url points at a file managed by the store.
func IsStored(url string) bool {
	return strings.HasPrefix(url, URLPrefix)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename reduces an uploaded filename to a safe ASCII name.
// Non-ASCII characters are transliterated rather than dropped so
// "café.png" keeps a readable stem.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = unidecode.Unidecode(filename)
	filename = strings.ReplaceAll(filename, " ", "-")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	filename = strings.Trim(filename, ".-")
	if filename == "" || filepath.Ext(filename) == "" {
		filename += ".bin"
	}
	return filename
}

func mimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return ""
}
